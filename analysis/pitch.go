// Package analysis measures rendered note samples.
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

const (
	minFFTSize = 256
	maxFFTSize = 1 << 16
)

// DominantFrequency estimates the strongest partial of samples in Hz using a
// Hann-windowed FFT with log-parabolic peak interpolation.
func DominantFrequency(samples []float64, sampleRate int) (float64, error) {
	if sampleRate <= 0 {
		return 0, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	n := fftSize(len(samples))
	if n == 0 {
		return 0, fmt.Errorf("need at least %d samples, got %d", minFFTSize, len(samples))
	}
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return 0, fmt.Errorf("fft plan: %w", err)
	}

	buf := make([]float64, n)
	for i := range buf {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		buf[i] = samples[i] * w
	}
	bins := make([]complex128, n/2+1)
	if err := plan.Forward(bins, buf); err != nil {
		return 0, fmt.Errorf("fft: %w", err)
	}

	peak := 1
	mags := make([]float64, len(bins))
	for k := range bins {
		mags[k] = cmplx.Abs(bins[k])
		if k >= 1 && k < len(bins)-1 && mags[k] > mags[peak] {
			peak = k
		}
	}
	if mags[peak] == 0 {
		return 0, fmt.Errorf("silent input")
	}

	delta := 0.0
	a, b, c := logMag(mags[peak-1]), logMag(mags[peak]), logMag(mags[peak+1])
	if den := a - 2*b + c; den != 0 {
		delta = 0.5 * (a - c) / den
	}
	return (float64(peak) + delta) * float64(sampleRate) / float64(n), nil
}

func fftSize(frames int) int {
	if frames < minFFTSize {
		return 0
	}
	n := minFFTSize
	for n*2 <= frames && n*2 <= maxFFTSize {
		n *= 2
	}
	return n
}

func logMag(v float64) float64 {
	return math.Log(v + 1e-12)
}
