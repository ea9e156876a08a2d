package harmony

import (
	"context"
	"time"
)

// Observer is called each time a candidate replaces the worst memory member.
type Observer func(iteration int, accepted Entry, best Entry)

// Option customizes a search run.
type Option func(*searchOptions)

type searchOptions struct {
	source   Source
	eval     *Evaluator
	observer Observer
}

// WithSource overrides the random stream (default: NewSource(cfg.Seed)).
func WithSource(src Source) Option {
	return func(o *searchOptions) { o.source = src }
}

// WithEvaluator sets the objective and vocabulary (default: DefaultVocabulary).
func WithEvaluator(e *Evaluator) Option {
	return func(o *searchOptions) { o.eval = e }
}

// WithObserver registers a callback for accepted candidates.
func WithObserver(fn Observer) Option {
	return func(o *searchOptions) { o.observer = fn }
}

// Result is the outcome of a search run.
type Result struct {
	Best          Sequence
	Score         float64
	Memory        []Entry
	InitialScores []float64
	Improvements  int
	Iterations    int
	Elapsed       time.Duration
}

// Search runs Harmony Search for cfg.Iterations rounds and returns the best
// member of the final memory. The context is checked once per round; a
// cancelled run returns ctx.Err() and no result.
func Search(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := searchOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.eval == nil {
		o.eval = NewEvaluator(nil)
	}
	if o.source == nil {
		o.source = NewSource(cfg.Seed)
	}
	vocab := o.eval.Vocabulary()
	rng := o.source

	start := time.Now()
	seqs, err := InitializeMemory(cfg, vocab, rng)
	if err != nil {
		return nil, err
	}
	mem, err := newMemory(seqs, o.eval)
	if err != nil {
		return nil, err
	}
	initial := make([]float64, mem.Len())
	for i, e := range mem.entries {
		initial[i] = e.Score
	}

	improvements := 0
	for it := 0; it < cfg.Iterations; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cand := improvise(cfg, mem, vocab, rng)
		score, err := o.eval.Score(cand)
		if err != nil {
			return nil, err
		}
		if score < mem.Worst().Score {
			accepted := Entry{Sequence: cand, Score: score}
			mem.replaceWorst(accepted)
			improvements++
			if o.observer != nil {
				o.observer(it+1, accepted, mem.Best())
			}
		}
	}

	best := mem.Best()
	return &Result{
		Best:          best.Sequence.Clone(),
		Score:         best.Score,
		Memory:        mem.Entries(),
		InitialScores: initial,
		Improvements:  improvements,
		Iterations:    cfg.Iterations,
		Elapsed:       time.Since(start),
	}, nil
}

// improvise builds one candidate. Per slot the draws are: HMCR coin, then
// either (member, position) or a vocabulary index, then PAR coin and, when it
// hits, a fresh vocabulary index.
func improvise(cfg Config, mem *Memory, vocab *Vocabulary, rng Source) Sequence {
	cand := make(Sequence, cfg.SequenceLength)
	for i := range cand {
		if rng.Float64() < cfg.HMCR {
			member := mem.entries[rng.Intn(mem.Len())].Sequence
			cand[i] = member[rng.Intn(len(member))]
		} else {
			cand[i] = vocab.at(rng.Intn(vocab.Len()))
		}
		if rng.Float64() < cfg.PAR {
			cand[i] = vocab.at(rng.Intn(vocab.Len()))
		}
	}
	return cand
}
