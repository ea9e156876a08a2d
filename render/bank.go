// Package render turns note sequences into audio by concatenating per-note
// WAV samples.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cwbudde/algo-harmony/harmony"
	"github.com/cwbudde/algo-harmony/internal/wavio"
)

// DefaultSampleRate is the rate sample banks are normalized to.
const DefaultSampleRate = 44100

// SampleBank loads "<label>.wav" files from a directory. All samples are
// converted to mono at SampleRate. Safe for concurrent use.
type SampleBank struct {
	Dir        string
	SampleRate int

	mu    sync.Mutex
	cache map[string][]float64
}

// NewSampleBank returns a bank rooted at dir (DefaultSampleRate when
// sampleRate <= 0).
func NewSampleBank(dir string, sampleRate int) *SampleBank {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &SampleBank{
		Dir:        dir,
		SampleRate: sampleRate,
		cache:      make(map[string][]float64),
	}
}

// Path returns the file that holds label.
func (b *SampleBank) Path(label string) string {
	return filepath.Join(b.Dir, label+".wav")
}

// Load returns the samples for label. The returned slice is shared; callers
// must not modify it.
func (b *SampleBank) Load(label string) ([]float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.cache[label]; ok {
		return s, nil
	}
	raw, sr, err := wavio.ReadMono(b.Path(label))
	if err != nil {
		return nil, fmt.Errorf("load sample %s: %w", label, err)
	}
	s, err := wavio.Resample(raw, sr, b.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("resample %s: %w", label, err)
	}
	b.cache[label] = s
	return s, nil
}

// Missing returns the vocabulary labels that have no sample file.
func (b *SampleBank) Missing(vocab *harmony.Vocabulary) []string {
	var out []string
	for _, label := range vocab.Labels() {
		if _, err := os.Stat(b.Path(label)); err != nil {
			out = append(out, label)
		}
	}
	return out
}

// Concatenate appends the samples of each note in seq.
func (b *SampleBank) Concatenate(seq harmony.Sequence) ([]float64, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("empty sequence")
	}
	var out []float64
	for _, label := range seq {
		s, err := b.Load(label)
		if err != nil {
			return nil, err
		}
		out = append(out, s...)
	}
	return out, nil
}

// WriteSequence renders seq into a 16-bit mono WAV file at path.
func (b *SampleBank) WriteSequence(path string, seq harmony.Sequence) (int, error) {
	samples, err := b.Concatenate(seq)
	if err != nil {
		return 0, err
	}
	if err := wavio.WriteMono(path, wavio.ToFloat32(samples), b.SampleRate); err != nil {
		return 0, err
	}
	return len(samples), nil
}
