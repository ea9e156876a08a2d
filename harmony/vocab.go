// Package harmony implements the note vocabulary, the objective function and
// the Harmony Search optimizer that composes short note sequences.
package harmony

import "math"

// Note is a vocabulary entry.
type Note struct {
	Label string  `json:"label"`
	Hz    float64 `json:"frequency"`
	Key   int     `json:"midi_key"`
}

// Sequence is an ordered list of note labels.
type Sequence []string

// Clone returns an independent copy of s.
func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Vocabulary is a fixed, ordered note table. The order is significant: the
// objective measures intervals as index distance within this table.
type Vocabulary struct {
	notes []Note
	index map[string]int
}

var defaultNotes = []Note{
	{Label: "C4", Hz: 261.63, Key: 60},
	{Label: "D4", Hz: 293.66, Key: 62},
	{Label: "E4", Hz: 329.63, Key: 64},
	{Label: "F4", Hz: 349.23, Key: 65},
	{Label: "G4", Hz: 392.00, Key: 67},
	{Label: "A4", Hz: 440.00, Key: 69},
	{Label: "B4", Hz: 493.88, Key: 71},
	{Label: "C5", Hz: 523.25, Key: 72},
}

var defaultVocabulary = mustVocabulary(defaultNotes...)

// DefaultVocabulary returns the C4..C5 table used by the objective.
func DefaultVocabulary() *Vocabulary {
	return defaultVocabulary
}

// NewVocabulary builds a vocabulary with the given order.
func NewVocabulary(notes ...Note) (*Vocabulary, error) {
	if len(notes) == 0 {
		return nil, invalid("vocabulary", "no notes")
	}
	v := &Vocabulary{
		notes: make([]Note, len(notes)),
		index: make(map[string]int, len(notes)),
	}
	for i, n := range notes {
		if n.Label == "" {
			return nil, invalid("vocabulary", "note %d has an empty label", i)
		}
		if !(n.Hz > 0) || math.IsInf(n.Hz, 0) {
			return nil, invalid("vocabulary", "note %q frequency must be > 0", n.Label)
		}
		if _, dup := v.index[n.Label]; dup {
			return nil, invalid("vocabulary", "duplicate note %q", n.Label)
		}
		v.notes[i] = n
		v.index[n.Label] = i
	}
	return v, nil
}

func mustVocabulary(notes ...Note) *Vocabulary {
	v, err := NewVocabulary(notes...)
	if err != nil {
		panic(err)
	}
	return v
}

// Len returns the number of notes.
func (v *Vocabulary) Len() int { return len(v.notes) }

// Labels returns the note labels in vocabulary order.
func (v *Vocabulary) Labels() []string {
	out := make([]string, len(v.notes))
	for i, n := range v.notes {
		out[i] = n.Label
	}
	return out
}

// Notes returns a copy of the table.
func (v *Vocabulary) Notes() []Note {
	out := make([]Note, len(v.notes))
	copy(out, v.notes)
	return out
}

// Note returns the entry for label.
func (v *Vocabulary) Note(label string) (Note, error) {
	i, err := v.IndexOf(label)
	if err != nil {
		return Note{}, err
	}
	return v.notes[i], nil
}

// Frequency returns the pitch of label in Hz.
func (v *Vocabulary) Frequency(label string) (float64, error) {
	i, err := v.IndexOf(label)
	if err != nil {
		return 0, err
	}
	return v.notes[i].Hz, nil
}

// IndexOf returns the zero-based position of label.
func (v *Vocabulary) IndexOf(label string) (int, error) {
	i, ok := v.index[label]
	if !ok {
		return 0, &UnknownNoteError{Label: label}
	}
	return i, nil
}

func (v *Vocabulary) at(i int) string { return v.notes[i].Label }
