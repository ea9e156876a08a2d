// Package preset loads search settings from JSON or YAML files.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-harmony/harmony"
	"github.com/cwbudde/algo-harmony/render"
	"gopkg.in/yaml.v3"
)

// Strategy names accepted in presets and on the command line.
const (
	StrategyHarmony = "hs"
	StrategyMayfly  = "mayfly"
)

// File is the on-disk schema. Absent fields keep their defaults.
type File struct {
	HMS              *int     `json:"hms" yaml:"hms"`
	HMCR             *float64 `json:"hmcr" yaml:"hmcr"`
	PAR              *float64 `json:"par" yaml:"par"`
	Iterations       *int     `json:"iterations" yaml:"iterations"`
	SequenceLength   *int     `json:"sequence_length" yaml:"sequence_length"`
	Seed             *int64   `json:"seed" yaml:"seed"`
	Strategy         string   `json:"strategy" yaml:"strategy"`
	MayflyVariant    string   `json:"mayfly_variant" yaml:"mayfly_variant"`
	MayflyPopulation *int     `json:"mayfly_population" yaml:"mayfly_population"`
	MayflyIterations *int     `json:"mayfly_iterations" yaml:"mayfly_iterations"`
	SampleDir        string   `json:"sample_dir" yaml:"sample_dir"`
	SampleRate       *int     `json:"sample_rate" yaml:"sample_rate"`
}

// Settings is a resolved preset.
type Settings struct {
	Config     harmony.Config
	Strategy   string
	Mayfly     harmony.MayflyOptions
	SampleDir  string
	SampleRate int
}

// Default returns the settings used when no preset is given.
func Default() *Settings {
	return &Settings{
		Config:     harmony.DefaultConfig(),
		Strategy:   StrategyHarmony,
		Mayfly:     harmony.DefaultMayflyOptions(),
		SampleDir:  "samples",
		SampleRate: render.DefaultSampleRate,
	}
}

// Load reads a preset file and applies it on top of Default. A relative
// sample_dir is resolved against the preset's directory.
func Load(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &f)
	default:
		err = json.Unmarshal(b, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	s := Default()
	if err := ApplyFile(s, &f); err != nil {
		return nil, err
	}
	if f.SampleDir != "" && !filepath.IsAbs(s.SampleDir) {
		s.SampleDir = filepath.Clean(filepath.Join(filepath.Dir(path), s.SampleDir))
	}
	return s, nil
}

// ApplyFile applies a parsed preset onto dst and validates the result.
func ApplyFile(dst *Settings, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination settings")
	}
	if f == nil {
		return nil
	}

	if f.HMS != nil {
		dst.Config.MemorySize = *f.HMS
	}
	if f.HMCR != nil {
		dst.Config.HMCR = *f.HMCR
	}
	if f.PAR != nil {
		dst.Config.PAR = *f.PAR
	}
	if f.Iterations != nil {
		dst.Config.Iterations = *f.Iterations
	}
	if f.SequenceLength != nil {
		dst.Config.SequenceLength = *f.SequenceLength
	}
	if f.Seed != nil {
		dst.Config.Seed = *f.Seed
	}
	if f.Strategy != "" {
		dst.Strategy = strings.ToLower(strings.TrimSpace(f.Strategy))
	}
	if f.MayflyVariant != "" {
		dst.Mayfly.Variant = strings.ToLower(strings.TrimSpace(f.MayflyVariant))
	}
	if f.MayflyPopulation != nil {
		dst.Mayfly.Population = *f.MayflyPopulation
	}
	if f.MayflyIterations != nil {
		dst.Mayfly.Iterations = *f.MayflyIterations
	}
	if f.SampleDir != "" {
		dst.SampleDir = strings.TrimSpace(f.SampleDir)
	}
	if f.SampleRate != nil {
		if *f.SampleRate <= 0 {
			return fmt.Errorf("sample_rate must be > 0")
		}
		dst.SampleRate = *f.SampleRate
	}
	return dst.Validate()
}

// Validate checks the search configuration and strategy.
func (s *Settings) Validate() error {
	if err := s.Config.Validate(); err != nil {
		return err
	}
	switch s.Strategy {
	case StrategyHarmony:
	case StrategyMayfly:
		if !validVariant(s.Mayfly.Variant) {
			return fmt.Errorf("unsupported mayfly_variant %q", s.Mayfly.Variant)
		}
		if s.Mayfly.Population < 2 {
			return fmt.Errorf("mayfly_population must be >= 2")
		}
		if s.Mayfly.Iterations < 1 {
			return fmt.Errorf("mayfly_iterations must be >= 1")
		}
	default:
		return fmt.Errorf("unsupported strategy %q (use %s or %s)", s.Strategy, StrategyHarmony, StrategyMayfly)
	}
	return nil
}

func validVariant(v string) bool {
	for _, known := range harmony.MayflyVariants {
		if v == known {
			return true
		}
	}
	return false
}
