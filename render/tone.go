package render

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-approx"
	"github.com/cwbudde/algo-harmony/harmony"
	"github.com/cwbudde/algo-harmony/internal/wavio"
)

const (
	toneAttackSec = 0.01
	toneDecayRate = 3.0
	toneGain      = 0.6
)

// Tone returns a plain decaying sine at freq. It is a placeholder sample for
// banks without recordings, not an instrument model.
func Tone(freq float64, sampleRate int, duration float64) []float64 {
	n := int(float64(sampleRate) * duration)
	if n < 1 || freq <= 0 {
		return nil
	}
	attack := int(toneAttackSec * float64(sampleRate))
	release := attack
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		env := float64(approx.FastExp(float32(-toneDecayRate * t)))
		if i < attack {
			env *= float64(i) / float64(attack)
		}
		if tail := n - 1 - i; tail < release {
			env *= float64(tail) / float64(release)
		}
		out[i] = toneGain * env * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

// WriteToneBank writes one Tone per vocabulary note into dir and returns the
// written paths in vocabulary order.
func WriteToneBank(dir string, vocab *harmony.Vocabulary, sampleRate int, duration float64) ([]string, error) {
	if vocab == nil {
		vocab = harmony.DefaultVocabulary()
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be > 0")
	}
	bank := NewSampleBank(dir, sampleRate)
	paths := make([]string, 0, vocab.Len())
	for _, n := range vocab.Notes() {
		path := bank.Path(n.Label)
		if err := wavio.WriteMono(path, wavio.ToFloat32(Tone(n.Hz, sampleRate, duration)), sampleRate); err != nil {
			return paths, fmt.Errorf("write %s: %w", n.Label, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
