package harmony

import (
	"context"
	"errors"
	"testing"
)

func TestNewMayflyConfig(t *testing.T) {
	for _, variant := range append(append([]string{}, MayflyVariants...), "bogus") {
		t.Run(variant, func(t *testing.T) {
			cfg, err := newMayflyConfig(variant, 10, 5, 20)
			if variant == "bogus" {
				if !errors.Is(err, ErrInvalidConfiguration) {
					t.Fatalf("newMayflyConfig(%q) error = %v", variant, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("newMayflyConfig(%q) unexpected error: %v", variant, err)
			}
			if cfg.ProblemSize != 5 || cfg.NPop != 10 || cfg.MaxIterations != 20 {
				t.Fatalf("config = size %d pop %d iters %d", cfg.ProblemSize, cfg.NPop, cfg.MaxIterations)
			}
			if cfg.LowerBound != 0 || cfg.UpperBound != 1 {
				t.Fatalf("bounds = [%g,%g], want [0,1]", cfg.LowerBound, cfg.UpperBound)
			}
		})
	}
}

func TestDecodePosition(t *testing.T) {
	v := DefaultVocabulary()
	got := DecodePosition([]float64{0, 0.124, 0.125, 0.99, 1.0, -0.2, 1.7}, v)
	want := Sequence{"C4", "C4", "D4", "C5", "C5", "C4", "C5"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DecodePosition()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSearchMayfly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SequenceLength = 4
	opts := MayflyOptions{Variant: "ma", Population: 4, Iterations: 5}
	eval := NewEvaluator(nil)
	res, err := SearchMayfly(context.Background(), cfg, opts, eval)
	if err != nil {
		t.Fatalf("SearchMayfly: %v", err)
	}
	if len(res.Best) != cfg.SequenceLength {
		t.Fatalf("best length = %d, want %d", len(res.Best), cfg.SequenceLength)
	}
	if got := mustScore(t, eval, res.Best); got != res.Score {
		t.Fatalf("reported score %.4f, recomputed %.4f", res.Score, got)
	}
	if res.Improvements < 1 {
		t.Fatalf("improvements = %d, want >= 1", res.Improvements)
	}
}

func TestSearchMayflyRejectsOptions(t *testing.T) {
	cfg := DefaultConfig()
	tests := []MayflyOptions{
		{Variant: "nope", Population: 4, Iterations: 2},
		{Variant: "ma", Population: 1, Iterations: 2},
		{Variant: "ma", Population: 4, Iterations: 0},
	}
	for _, opts := range tests {
		if _, err := SearchMayfly(context.Background(), cfg, opts, nil); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("SearchMayfly(%+v) error = %v, want ErrInvalidConfiguration", opts, err)
		}
	}
}
