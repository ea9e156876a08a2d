package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cwbudde/algo-harmony/harmony"
	"github.com/cwbudde/algo-harmony/preset"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

type runReport struct {
	RunID          string            `json:"run_id"`
	CreatedAt      time.Time         `json:"created_at"`
	Strategy       string            `json:"strategy"`
	MayflyVariant  string            `json:"mayfly_variant,omitempty"`
	Config         harmony.Config    `json:"config"`
	BestSequence   harmony.Sequence  `json:"best_sequence"`
	BestScore      float64           `json:"best_score"`
	Breakdown      harmony.Breakdown `json:"breakdown"`
	Memory         []harmony.Entry   `json:"memory"`
	InitialScores  []float64         `json:"initial_scores,omitempty"`
	MemoryMean     float64           `json:"memory_mean"`
	MemoryStdDev   float64           `json:"memory_stddev"`
	Improvements   int               `json:"improvements"`
	Iterations     int               `json:"iterations"`
	ElapsedSeconds float64           `json:"elapsed_seconds"`
}

func newRunReport(s *preset.Settings, res *harmony.Result, b harmony.Breakdown) runReport {
	scores := make([]float64, len(res.Memory))
	for i, e := range res.Memory {
		scores[i] = e.Score
	}
	mean, std := memoryStats(scores)
	r := runReport{
		RunID:          uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Strategy:       s.Strategy,
		Config:         s.Config,
		BestSequence:   res.Best,
		BestScore:      res.Score,
		Breakdown:      b,
		Memory:         res.Memory,
		InitialScores:  res.InitialScores,
		MemoryMean:     mean,
		MemoryStdDev:   std,
		Improvements:   res.Improvements,
		Iterations:     res.Iterations,
		ElapsedSeconds: res.Elapsed.Seconds(),
	}
	if s.Strategy == preset.StrategyMayfly {
		r.MayflyVariant = s.Mayfly.Variant
	}
	return r
}

// memoryStats returns the mean and sample standard deviation of scores.
// The deviation is 0 for fewer than two scores.
func memoryStats(scores []float64) (float64, float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	mean := stat.Mean(scores, nil)
	if len(scores) < 2 {
		return mean, 0
	}
	return mean, stat.StdDev(scores, nil)
}

func writeReport(path string, r runReport) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}
