package domain

import (
	"time"

	"github.com/google/uuid"
)

// Source names the parser that produced a result.
type Source string

const (
	SourceHoldingsCSV    Source = "holdings-csv"
	SourceTransactionCSV Source = "transaction-csv"
	SourceXML            Source = "xml"
	SourceContainer      Source = "container"
	SourceAuto           Source = "auto"
)

// Status describes the outcome of the last ingestion attempt.
type Status struct {
	OK        bool      `json:"ok"`
	Message   string    `json:"message"`
	Headers   []string  `json:"headers"`
	Delimiter string    `json:"delimiter"`
	Source    Source    `json:"source"`
	RunID     uuid.UUID `json:"runId"`
	CheckedAt time.Time `json:"checkedAt"`
}

// NewStatus returns the optimistic default every ingestion attempt starts from.
func NewStatus() Status {
	return Status{
		OK:        true,
		Headers:   []string{},
		RunID:     uuid.New(),
		CheckedAt: time.Now().UTC(),
	}
}

// Fail marks the status not-ok with the given message.
func (s *Status) Fail(msg string) {
	s.OK = false
	s.Message = msg
}

// State is the short form shown by status displays.
func (s Status) State() string {
	if s.OK {
		return "ok"
	}
	return "warn"
}
