package harmony

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cwbudde/mayfly"
)

// MayflyVariants lists the accepted Mayfly variant names.
var MayflyVariants = []string{"ma", "desma", "olce", "eobbma", "gsasma", "mpma", "aoblmoa"}

// MayflyOptions configures SearchMayfly.
type MayflyOptions struct {
	Variant    string
	Population int
	Iterations int
}

// DefaultMayflyOptions returns the settings used by the CLI.
func DefaultMayflyOptions() MayflyOptions {
	return MayflyOptions{Variant: "desma", Population: 10, Iterations: 20}
}

// SearchMayfly minimizes the same objective as Search with the Mayfly
// optimizer. Each slot of the sequence is a coordinate in [0,1] that is
// decoded to a vocabulary index. cfg.MemorySize, HMCR and PAR are ignored.
func SearchMayfly(ctx context.Context, cfg Config, opts MayflyOptions, eval *Evaluator) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if eval == nil {
		eval = NewEvaluator(nil)
	}
	if opts.Population < 2 {
		return nil, invalid("mayfly_population", "%d (must be >= 2)", opts.Population)
	}
	if opts.Iterations < 1 {
		return nil, invalid("mayfly_iterations", "%d (must be >= 1)", opts.Iterations)
	}
	mcfg, err := newMayflyConfig(strings.ToLower(opts.Variant), opts.Population, cfg.SequenceLength, opts.Iterations)
	if err != nil {
		return nil, err
	}
	mcfg.Rand = NewSource(cfg.Seed)

	vocab := eval.Vocabulary()
	start := time.Now()
	var (
		best         Sequence
		bestScore    = math.Inf(1)
		improvements int
		evalErr      error
	)
	mcfg.ObjectiveFunc = func(pos []float64) float64 {
		if evalErr != nil || ctx.Err() != nil {
			return bestScore + 1.0
		}
		seq := DecodePosition(pos, vocab)
		score, err := eval.Score(seq)
		if err != nil {
			evalErr = err
			return bestScore + 1.0
		}
		if score < bestScore {
			best, bestScore = seq, score
			improvements++
		}
		return score
	}

	res, err := runMayfly(mcfg)
	if err != nil {
		return nil, err
	}
	if evalErr != nil {
		return nil, evalErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if best == nil {
		return nil, fmt.Errorf("mayfly %s: no evaluations", opts.Variant)
	}
	return &Result{
		Best:         best.Clone(),
		Score:        bestScore,
		Memory:       []Entry{{Sequence: best.Clone(), Score: bestScore}},
		Improvements: improvements,
		Iterations:   res.IterationCount,
		Elapsed:      time.Since(start),
	}, nil
}

// DecodePosition maps each coordinate in [0,1] to a vocabulary label.
func DecodePosition(pos []float64, vocab *Vocabulary) Sequence {
	n := vocab.Len()
	seq := make(Sequence, len(pos))
	for i, x := range pos {
		j := int(math.Floor(x * float64(n)))
		if j < 0 || math.IsNaN(x) {
			j = 0
		}
		if j >= n {
			j = n - 1
		}
		seq[i] = vocab.at(j)
	}
	return seq
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, invalid("mayfly_variant", "unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}
