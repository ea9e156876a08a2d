package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/cwbudde/algo-harmony/harmony"
	"github.com/cwbudde/algo-harmony/midiout"
	"github.com/cwbudde/algo-harmony/preset"
	"github.com/cwbudde/algo-harmony/render"
	"github.com/spf13/cobra"
)

type searchFlags struct {
	presetPath    string
	length        int
	hms           int
	hmcr          float64
	par           float64
	iterations    int
	seed          int64
	strategy      string
	mayflyVariant string
	samples       string
	output        string
	midi          string
	report        string
}

func newSearchCmd() *cobra.Command {
	f := &searchFlags{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a search and print the best sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := f.settings(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runSearch(ctx, cmd.OutOrStdout(), settings, f)
		},
	}
	bindSearchFlags(cmd, f)
	return cmd
}

func bindSearchFlags(cmd *cobra.Command, f *searchFlags) {
	def := preset.Default()
	fl := cmd.Flags()
	fl.StringVar(&f.presetPath, "preset", "", "Preset JSON or YAML path (optional)")
	fl.IntVar(&f.length, "length", def.Config.SequenceLength, "Notes per sequence")
	fl.IntVar(&f.hms, "hms", def.Config.MemorySize, "Harmony memory size")
	fl.Float64Var(&f.hmcr, "hmcr", def.Config.HMCR, "Harmony memory considering rate")
	fl.Float64Var(&f.par, "par", def.Config.PAR, "Pitch adjusting rate")
	fl.IntVar(&f.iterations, "iterations", def.Config.Iterations, "Improvisation rounds")
	fl.Int64Var(&f.seed, "seed", def.Config.Seed, "Random seed")
	fl.StringVar(&f.strategy, "strategy", def.Strategy, "Search strategy: hs|mayfly")
	fl.StringVar(&f.mayflyVariant, "mayfly-variant", def.Mayfly.Variant, "Mayfly variant: "+strings.Join(harmony.MayflyVariants, "|"))
	fl.StringVar(&f.samples, "samples", "", "Sample bank directory (default from preset)")
	fl.StringVar(&f.output, "output", "", "Write the best sequence as WAV")
	fl.StringVar(&f.midi, "midi", "", "Write the best sequence as a MIDI file")
	fl.StringVar(&f.report, "report", "", "Write a JSON run report")
}

// settings loads the preset (if any) and applies flags the user set
// explicitly on top of it.
func (f *searchFlags) settings(cmd *cobra.Command) (*preset.Settings, error) {
	s := preset.Default()
	if f.presetPath != "" {
		loaded, err := preset.Load(f.presetPath)
		if err != nil {
			return nil, fmt.Errorf("load preset: %w", err)
		}
		s = loaded
	}
	changed := cmd.Flags().Changed
	if changed("length") {
		s.Config.SequenceLength = f.length
	}
	if changed("hms") {
		s.Config.MemorySize = f.hms
	}
	if changed("hmcr") {
		s.Config.HMCR = f.hmcr
	}
	if changed("par") {
		s.Config.PAR = f.par
	}
	if changed("iterations") {
		s.Config.Iterations = f.iterations
	}
	if changed("seed") {
		s.Config.Seed = f.seed
	}
	if changed("strategy") {
		s.Strategy = strings.ToLower(strings.TrimSpace(f.strategy))
	}
	if changed("mayfly-variant") {
		s.Mayfly.Variant = strings.ToLower(strings.TrimSpace(f.mayflyVariant))
	}
	if changed("samples") {
		s.SampleDir = f.samples
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func runSearch(ctx context.Context, w io.Writer, s *preset.Settings, f *searchFlags) error {
	eval := harmony.NewEvaluator(nil)
	res, err := search(ctx, w, s, eval)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	breakdown, err := eval.Breakdown(res.Best)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Best: %s\n", strings.Join(res.Best, " "))
	fmt.Fprintf(w, "Score=%.4f total=%.2fHz repeats=%d rewards=%d improvements=%d elapsed=%.3fs\n",
		res.Score, breakdown.Total, breakdown.Repeats, breakdown.Rewards, res.Improvements, res.Elapsed.Seconds())

	if f.output != "" {
		bank := render.NewSampleBank(s.SampleDir, s.SampleRate)
		if missing := bank.Missing(eval.Vocabulary()); len(missing) > 0 {
			return fmt.Errorf("sample bank %s is missing %s (run 'harmony tones --dir %s')", s.SampleDir, strings.Join(missing, ", "), s.SampleDir)
		}
		n, err := bank.WriteSequence(f.output, res.Best)
		if err != nil {
			return fmt.Errorf("write wav: %w", err)
		}
		fmt.Fprintf(w, "Wrote %s (%d samples, %.2fs)\n", f.output, n, float64(n)/float64(bank.SampleRate))
	}
	if f.midi != "" {
		if err := midiout.WriteFile(f.midi, res.Best, eval.Vocabulary(), midiout.DefaultOptions()); err != nil {
			return fmt.Errorf("write midi: %w", err)
		}
		fmt.Fprintf(w, "Wrote %s\n", f.midi)
	}
	if f.report != "" {
		if err := writeReport(f.report, newRunReport(s, res, breakdown)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(w, "Wrote %s\n", f.report)
	}
	return nil
}

func search(ctx context.Context, w io.Writer, s *preset.Settings, eval *harmony.Evaluator) (*harmony.Result, error) {
	switch s.Strategy {
	case preset.StrategyMayfly:
		fmt.Fprintf(w, "Mayfly variant=%s pop=%d iterations=%d length=%d seed=%d\n",
			s.Mayfly.Variant, s.Mayfly.Population, s.Mayfly.Iterations, s.Config.SequenceLength, s.Config.Seed)
		return harmony.SearchMayfly(ctx, s.Config, s.Mayfly, eval)
	default:
		c := s.Config
		fmt.Fprintf(w, "Harmony search hms=%d hmcr=%.2f par=%.2f iterations=%d length=%d seed=%d\n",
			c.MemorySize, c.HMCR, c.PAR, c.Iterations, c.SequenceLength, c.Seed)
		improveNum := 0
		observer := func(iteration int, accepted, best harmony.Entry) {
			improveNum++
			fmt.Fprintf(w, "Improved #%d iter=%d score=%.4f best=%.4f\n", improveNum, iteration, accepted.Score, best.Score)
		}
		return harmony.Search(ctx, c, harmony.WithEvaluator(eval), harmony.WithObserver(observer))
	}
}
