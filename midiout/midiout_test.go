package midiout

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-harmony/harmony"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestWriteEncodesNotesInOrder(t *testing.T) {
	seq := harmony.Sequence{"C4", "E4", "G4", "C5"}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, seq, nil, DefaultOptions()))

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, s.Tracks, 1)

	var keys []uint8
	var bpm float64
	for _, ev := range s.Tracks[0] {
		var ch, key, vel uint8
		if ev.Message.GetNoteStart(&ch, &key, &vel) {
			keys = append(keys, key)
			assert.Equal(t, uint8(100), vel)
		}
		ev.Message.GetMetaTempo(&bpm)
	}
	assert.Equal(t, []uint8{60, 64, 67, 72}, keys)
	assert.InDelta(t, 120.0, bpm, 0.01)
}

func TestBuildRejectsBadInput(t *testing.T) {
	_, err := Build(nil, nil, DefaultOptions())
	assert.Error(t, err)

	_, err = Build(harmony.Sequence{"X9"}, nil, DefaultOptions())
	assert.ErrorIs(t, err, harmony.ErrUnknownNote)

	opts := DefaultOptions()
	opts.Velocity = 0
	_, err = Build(harmony.Sequence{"A4"}, nil, opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.BPM = 0
	_, err = Build(harmony.Sequence{"A4"}, nil, opts)
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "best.mid")
	require.NoError(t, WriteFile(path, harmony.Sequence{"A4", "B4"}, nil, DefaultOptions()))

	s, err := smf.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), s.NumTracks())
}
