package harmony

import (
	"context"
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{name: "zero length", mod: func(c *Config) { c.SequenceLength = 0 }, field: "sequence_length"},
		{name: "negative length", mod: func(c *Config) { c.SequenceLength = -3 }, field: "sequence_length"},
		{name: "zero hms", mod: func(c *Config) { c.MemorySize = 0 }, field: "hms"},
		{name: "zero iterations", mod: func(c *Config) { c.Iterations = 0 }, field: "iterations"},
		{name: "hmcr above one", mod: func(c *Config) { c.HMCR = 1.5 }, field: "hmcr"},
		{name: "par below zero", mod: func(c *Config) { c.PAR = -0.1 }, field: "par"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			err := cfg.Validate()
			var ice *InvalidConfigurationError
			if !errors.As(err, &ice) {
				t.Fatalf("Validate() = %v, want *InvalidConfigurationError", err)
			}
			if ice.Field != tt.field {
				t.Fatalf("field = %q, want %q", ice.Field, tt.field)
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
}

func TestSearchRejectsEmptySequenceLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SequenceLength = 0
	res, err := Search(context.Background(), cfg)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("Search() error = %v, want ErrInvalidConfiguration", err)
	}
	if res != nil {
		t.Fatalf("Search() returned a result on failure")
	}
}

func TestInitializeMemoryShape(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MemorySize = 7
	cfg.SequenceLength = 13
	vocab := DefaultVocabulary()
	seqs, err := InitializeMemory(cfg, vocab, NewSource(42))
	if err != nil {
		t.Fatalf("InitializeMemory: %v", err)
	}
	if len(seqs) != cfg.MemorySize {
		t.Fatalf("memory size = %d, want %d", len(seqs), cfg.MemorySize)
	}
	for i, s := range seqs {
		if len(s) != cfg.SequenceLength {
			t.Fatalf("seq %d length = %d, want %d", i, len(s), cfg.SequenceLength)
		}
		for _, label := range s {
			if _, err := vocab.IndexOf(label); err != nil {
				t.Fatalf("seq %d contains %q: %v", i, label, err)
			}
		}
	}
}

func TestMemoryInvariantsAcrossRounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Iterations = 500
	eval := NewEvaluator(nil)
	rng := NewSource(7)
	seqs, err := InitializeMemory(cfg, eval.Vocabulary(), rng)
	if err != nil {
		t.Fatalf("InitializeMemory: %v", err)
	}
	mem, err := newMemory(seqs, eval)
	if err != nil {
		t.Fatalf("newMemory: %v", err)
	}
	bestSoFar := mem.Best().Score
	for it := 0; it < cfg.Iterations; it++ {
		cand := improvise(cfg, mem, eval.Vocabulary(), rng)
		if len(cand) != cfg.SequenceLength {
			t.Fatalf("round %d: candidate length %d", it, len(cand))
		}
		score := mustScore(t, eval, cand)
		if score < mem.Worst().Score {
			mem.replaceWorst(Entry{Sequence: cand, Score: score})
		}
		if mem.Len() != cfg.MemorySize {
			t.Fatalf("round %d: memory size %d, want %d", it, mem.Len(), cfg.MemorySize)
		}
		if !mem.Sorted() {
			t.Fatalf("round %d: memory not sorted", it)
		}
		if mem.Best().Score > bestSoFar {
			t.Fatalf("round %d: best worsened from %.4f to %.4f", it, bestSoFar, mem.Best().Score)
		}
		bestSoFar = mem.Best().Score
	}
}

func TestSearchNeverWorsensInitialMemory(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		cfg := DefaultConfig()
		cfg.Seed = seed
		res, err := Search(context.Background(), cfg)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		for _, s := range res.InitialScores {
			if res.Score > s {
				t.Fatalf("seed %d: best %.4f worse than initial member %.4f", seed, res.Score, s)
			}
		}
		if len(res.Memory) != cfg.MemorySize {
			t.Fatalf("seed %d: final memory size %d", seed, len(res.Memory))
		}
		if got := mustScore(t, NewEvaluator(nil), res.Best); got != res.Score {
			t.Fatalf("seed %d: reported score %.4f, recomputed %.4f", seed, res.Score, got)
		}
		for i := 1; i < len(res.Memory); i++ {
			if res.Memory[i].Score < res.Memory[i-1].Score {
				t.Fatalf("seed %d: final memory not ascending at %d", seed, i)
			}
		}
	}
}

func TestSearchDeterministicForSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 99
	a, err := Search(context.Background(), cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := Search(context.Background(), cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if a.Score != b.Score || len(a.Best) != len(b.Best) {
		t.Fatalf("runs differ: %v (%.4f) vs %v (%.4f)", a.Best, a.Score, b.Best, b.Score)
	}
	for i := range a.Best {
		if a.Best[i] != b.Best[i] {
			t.Fatalf("runs differ at %d: %v vs %v", i, a.Best, b.Best)
		}
	}
}

func TestSearchObserverCountsImprovements(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Iterations = 300
	calls := 0
	last := 0
	res, err := Search(context.Background(), cfg, WithObserver(func(it int, accepted, best Entry) {
		calls++
		if it <= last || it > cfg.Iterations {
			t.Fatalf("observer iteration %d out of order (last %d)", it, last)
		}
		last = it
		if best.Score > accepted.Score {
			t.Fatalf("best %.4f worse than accepted %.4f", best.Score, accepted.Score)
		}
	}))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if calls != res.Improvements {
		t.Fatalf("observer calls = %d, improvements = %d", calls, res.Improvements)
	}
}

func TestSearchHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Search(ctx, DefaultConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Search() error = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Fatalf("cancelled search returned a result")
	}
}

type scriptedSource struct {
	t      *testing.T
	floats []float64
	ints   []int
	ns     []int
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		s.t.Fatalf("unexpected Float64 draw")
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		s.t.Fatalf("unexpected Intn(%d) draw", n)
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	s.ns = append(s.ns, n)
	return v
}

func TestImproviseDrawOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SequenceLength = 2
	cfg.HMCR = 0.5
	cfg.PAR = 0.5
	mem := &Memory{entries: []Entry{
		{Sequence: Sequence{"C4", "D4"}},
		{Sequence: Sequence{"E4", "F4"}},
	}}
	src := &scriptedSource{
		t: t,
		// slot 0: memory branch, no pitch adjustment
		// slot 1: random branch, then pitch adjustment
		floats: []float64{0.1, 0.9, 0.7, 0.2},
		ints:   []int{1, 0, 7, 5},
	}
	got := improvise(cfg, mem, DefaultVocabulary(), src)
	if got[0] != "E4" || got[1] != "A4" {
		t.Fatalf("improvise() = %v, want [E4 A4]", got)
	}
	wantN := []int{2, 2, 8, 8}
	for i := range wantN {
		if src.ns[i] != wantN[i] {
			t.Fatalf("draw %d bound = %d, want %d", i, src.ns[i], wantN[i])
		}
	}
	if len(src.floats) != 0 || len(src.ints) != 0 {
		t.Fatalf("unused draws: floats=%v ints=%v", src.floats, src.ints)
	}
}

func TestSearchWithCustomVocabulary(t *testing.T) {
	vocab, err := NewVocabulary(Note{Label: "A4", Hz: 440, Key: 69})
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}
	cfg := DefaultConfig()
	cfg.SequenceLength = 1
	res, err := Search(context.Background(), cfg, WithEvaluator(NewEvaluator(vocab)), WithSource(NewSource(3)))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Best) != 1 || res.Best[0] != "A4" || res.Score != 0 {
		t.Fatalf("best = %v (%.2f), want [A4] (0)", res.Best, res.Score)
	}
}
