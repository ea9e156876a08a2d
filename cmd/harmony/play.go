package main

import (
	"fmt"

	"github.com/cwbudde/algo-harmony/harmony"
	"github.com/cwbudde/algo-harmony/preset"
	"github.com/cwbudde/algo-harmony/render"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var (
		samples    string
		output     string
		sampleRate int
	)
	def := preset.Default()
	cmd := &cobra.Command{
		Use:   "play <label>",
		Short: "Render a single note from the sample bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := args[0]
			if _, err := harmony.DefaultVocabulary().IndexOf(label); err != nil {
				return err
			}
			if output == "" {
				output = label + ".wav"
			}
			bank := render.NewSampleBank(samples, sampleRate)
			n, err := bank.WriteSequence(output, harmony.Sequence{label})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %.2fs)\n", output, label, float64(n)/float64(bank.SampleRate))
			return nil
		},
	}
	cmd.Flags().StringVar(&samples, "samples", def.SampleDir, "Sample bank directory")
	cmd.Flags().StringVar(&output, "output", "", "Output WAV path (default <label>.wav)")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", def.SampleRate, "Output sample rate in Hz")
	return cmd
}
