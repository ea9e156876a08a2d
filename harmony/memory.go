package harmony

import "sort"

// Entry is a scored harmony memory member.
type Entry struct {
	Sequence Sequence `json:"sequence"`
	Score    float64  `json:"score"`
}

// Memory is the optimizer population. Once built by newMemory it is kept in
// ascending score order, so the last entry is always the worst.
type Memory struct {
	entries []Entry
}

// InitializeMemory draws cfg.MemorySize sequences of cfg.SequenceLength
// labels uniformly, with replacement, from vocab. Nothing is scored here.
func InitializeMemory(cfg Config, vocab *Vocabulary, rng Source) ([]Sequence, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	out := make([]Sequence, cfg.MemorySize)
	for i := range out {
		seq := make(Sequence, cfg.SequenceLength)
		for j := range seq {
			seq[j] = vocab.at(rng.Intn(vocab.Len()))
		}
		out[i] = seq
	}
	return out, nil
}

func newMemory(seqs []Sequence, eval *Evaluator) (*Memory, error) {
	m := &Memory{entries: make([]Entry, len(seqs))}
	for i, s := range seqs {
		score, err := eval.Score(s)
		if err != nil {
			return nil, err
		}
		m.entries[i] = Entry{Sequence: s, Score: score}
	}
	m.sort()
	return m, nil
}

// Len returns the number of members.
func (m *Memory) Len() int { return len(m.entries) }

// Best returns the first member.
func (m *Memory) Best() Entry { return m.entries[0] }

// Worst returns the last member in the current order.
func (m *Memory) Worst() Entry { return m.entries[len(m.entries)-1] }

// Entries returns a deep copy of the members in order.
func (m *Memory) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = Entry{Sequence: e.Sequence.Clone(), Score: e.Score}
	}
	return out
}

// Sorted reports whether the members are in ascending score order.
func (m *Memory) Sorted() bool {
	return sort.SliceIsSorted(m.entries, func(i, j int) bool {
		return m.entries[i].Score < m.entries[j].Score
	})
}

// replaceWorst overwrites the last member and restores the order.
func (m *Memory) replaceWorst(e Entry) {
	m.entries[len(m.entries)-1] = e
	m.sort()
}

func (m *Memory) sort() {
	sort.SliceStable(m.entries, func(i, j int) bool {
		return m.entries[i].Score < m.entries[j].Score
	})
}
