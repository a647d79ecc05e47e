package worker

import (
	"sync/atomic"

	"github.com/badmin-c/pp-portfolio/internal/domain"
)

// State is the outcome of one refresh: the holdings and the status describing them.
type State struct {
	Result domain.Result `json:"result"`
	Status domain.Status `json:"status"`
}

// Store holds the most recently published State. Readers always see a complete
// State, never a result from one refresh paired with the status of another.
type Store struct {
	current atomic.Pointer[State]
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Publish replaces the current State.
func (s *Store) Publish(st State) {
	s.current.Store(&st)
}

// Load returns the current State and whether anything was published yet.
func (s *Store) Load() (State, bool) {
	st := s.current.Load()
	if st == nil {
		return State{Result: domain.EmptyResult()}, false
	}
	return *st, true
}
