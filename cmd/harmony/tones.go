package main

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-harmony/analysis"
	"github.com/cwbudde/algo-harmony/harmony"
	"github.com/cwbudde/algo-harmony/internal/wavio"
	"github.com/cwbudde/algo-harmony/render"
	"github.com/spf13/cobra"
)

func newTonesCmd() *cobra.Command {
	var (
		dir        string
		sampleRate int
		duration   float64
	)
	cmd := &cobra.Command{
		Use:   "tones",
		Short: "Write a sine test tone for every note and report its measured pitch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vocab := harmony.DefaultVocabulary()
			paths, err := render.WriteToneBank(dir, vocab, sampleRate, duration)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			notes := vocab.Notes()
			for i, path := range paths {
				samples, sr, err := wavio.ReadMono(path)
				if err != nil {
					return err
				}
				f0, err := analysis.DominantFrequency(samples, sr)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(w, "%-3s %s target=%.2fHz measured=%.2fHz cents=%+.1f\n",
					notes[i].Label, path, notes[i].Hz, f0, 1200*math.Log2(f0/notes[i].Hz))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "samples", "Output directory")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", render.DefaultSampleRate, "Sample rate in Hz")
	cmd.Flags().Float64Var(&duration, "duration", 0.5, "Tone length in seconds")
	return cmd
}
