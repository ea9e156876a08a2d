// Package midiout exports note sequences as Standard MIDI Files.
package midiout

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-harmony/harmony"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Options controls the exported track.
type Options struct {
	BPM       float64
	Velocity  uint8
	Channel   uint8
	TrackName string
}

// DefaultOptions returns 120 BPM quarter notes at velocity 100 on channel 0.
func DefaultOptions() Options {
	return Options{BPM: 120, Velocity: 100, TrackName: "harmony"}
}

// Build returns a single-track SMF with one quarter note per label.
func Build(seq harmony.Sequence, vocab *harmony.Vocabulary, opts Options) (*smf.SMF, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("empty sequence")
	}
	if vocab == nil {
		vocab = harmony.DefaultVocabulary()
	}
	if opts.BPM <= 0 {
		return nil, fmt.Errorf("bpm must be > 0")
	}
	if opts.Velocity == 0 || opts.Velocity > 127 {
		return nil, fmt.Errorf("velocity must be in 1..127")
	}
	if opts.Channel > 15 {
		return nil, fmt.Errorf("channel must be in 0..15")
	}

	ticks := smf.MetricTicks(960)
	quarter := ticks.Ticks4th()

	var tr smf.Track
	if opts.TrackName != "" {
		tr.Add(0, smf.MetaTrackSequenceName(opts.TrackName))
	}
	tr.Add(0, smf.MetaTempo(opts.BPM))
	for _, label := range seq {
		n, err := vocab.Note(label)
		if err != nil {
			return nil, err
		}
		key := uint8(n.Key)
		tr.Add(0, midi.NoteOn(opts.Channel, key, opts.Velocity))
		tr.Add(quarter, midi.NoteOff(opts.Channel, key))
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = ticks
	if err := s.Add(tr); err != nil {
		return nil, err
	}
	return s, nil
}

// Write encodes seq as SMF data to w.
func Write(w io.Writer, seq harmony.Sequence, vocab *harmony.Vocabulary, opts Options) error {
	s, err := Build(seq, vocab, opts)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}

// WriteFile writes seq to path, creating parent directories.
func WriteFile(path string, seq harmony.Sequence, vocab *harmony.Vocabulary, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, seq, vocab, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
