package harmony

import "math"

// Config holds the Harmony Search tuning knobs. It is passed by value and
// never modified by the optimizer.
type Config struct {
	MemorySize     int     `json:"hms"`
	HMCR           float64 `json:"hmcr"`
	PAR            float64 `json:"par"`
	Iterations     int     `json:"iterations"`
	SequenceLength int     `json:"sequence_length"`
	Seed           int64   `json:"seed"`
}

// DefaultConfig returns HMS=5, HMCR=0.9, PAR=0.3, 100 iterations and
// sequences of 10 notes.
func DefaultConfig() Config {
	return Config{
		MemorySize:     5,
		HMCR:           0.9,
		PAR:            0.3,
		Iterations:     100,
		SequenceLength: 10,
		Seed:           1,
	}
}

// Validate reports the first setting that cannot drive a search.
func (c Config) Validate() error {
	if c.SequenceLength <= 0 {
		return invalid("sequence_length", "%d (must be >= 1)", c.SequenceLength)
	}
	if c.MemorySize <= 0 {
		return invalid("hms", "%d (must be >= 1)", c.MemorySize)
	}
	if c.Iterations <= 0 {
		return invalid("iterations", "%d (must be >= 1)", c.Iterations)
	}
	if !isProbability(c.HMCR) {
		return invalid("hmcr", "%g (must be in [0,1])", c.HMCR)
	}
	if !isProbability(c.PAR) {
		return invalid("par", "%g (must be in [0,1])", c.PAR)
	}
	return nil
}

func isProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
