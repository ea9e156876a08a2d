package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cwbudde/algo-harmony/preset"
	"github.com/cwbudde/algo-harmony/render"
	"github.com/cwbudde/algo-harmony/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		samples    string
		presetPath string
		workDir    string
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve notes and harmony generation over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			settings := preset.Default()
			if presetPath != "" {
				loaded, err := preset.Load(presetPath)
				if err != nil {
					return err
				}
				settings = loaded
			}
			if cmd.Flags().Changed("samples") {
				settings.SampleDir = samples
			}

			s, err := server.New(server.Options{
				Bank:    render.NewSampleBank(settings.SampleDir, settings.SampleRate),
				Config:  settings.Config,
				WorkDir: workDir,
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			logger.Info("listening", "addr", addr, "samples", settings.SampleDir, "work_dir", s.WorkDir())
			return http.ListenAndServe(addr, s.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&samples, "samples", "samples", "Sample bank directory")
	cmd.Flags().StringVar(&presetPath, "preset", "", "Preset JSON or YAML path (optional)")
	cmd.Flags().StringVar(&workDir, "work-dir", "", "Directory for rendered sequences (default: temp dir)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log every request")
	return cmd
}
