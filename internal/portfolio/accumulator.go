package portfolio

// Sign of a replayed transaction: opening transactions add, closing ones subtract.
const (
	Opening = 1
	Closing = -1
)

// Security carries the descriptive fields of a replayed position.
type Security struct {
	Name     string
	Ticker   string
	Currency string
}

// Position is the net signed accumulation for one security.
type Position struct {
	Key      string
	Security Security
	Shares   float64
	Cost     float64
}

// Accumulator replays transactions into positions keyed by security identity.
// Positions are reported in the order their key was first seen.
type Accumulator struct {
	index     map[string]int
	positions []Position
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{index: make(map[string]int)}
}

// Add applies one transaction. The security is recorded the first time a key is seen.
func (a *Accumulator) Add(key string, sec Security, sign int, shares, amount float64) {
	i, ok := a.index[key]
	if !ok {
		i = len(a.positions)
		a.index[key] = i
		a.positions = append(a.positions, Position{Key: key, Security: sec})
	}
	a.positions[i].Shares += float64(sign) * shares
	a.positions[i].Cost += float64(sign) * amount
}

// Open returns the positions whose accumulated shares are positive.
// Closed and never-opened positions are dropped.
func (a *Accumulator) Open() []Position {
	open := make([]Position, 0, len(a.positions))
	for _, p := range a.positions {
		if p.Shares > 0 {
			open = append(open, p)
		}
	}
	return open
}

// Len is the number of distinct keys seen, open or not.
func (a *Accumulator) Len() int {
	return len(a.positions)
}
