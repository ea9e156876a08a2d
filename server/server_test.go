package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/cwbudde/algo-harmony/harmony"
	"github.com/cwbudde/algo-harmony/internal/wavio"
	"github.com/cwbudde/algo-harmony/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	_, err := render.WriteToneBank(dir, nil, 8000, 0.1)
	require.NoError(t, err)

	s, err := New(Options{
		Bank:    render.NewSampleBank(dir, 8000),
		Config:  harmony.DefaultConfig(),
		WorkDir: t.TempDir(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestListNotes(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/notes")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var notes []noteInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notes))
	require.Len(t, notes, 8)
	assert.Equal(t, "C4", notes[0].Label)
	assert.Equal(t, 440.0, notes[5].Frequency)
	assert.Equal(t, 7, notes[7].Index)
}

func TestNoteSample(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/notes/A4.wav")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/wav", resp.Header.Get("Content-Type"))
	assert.Equal(t, "RIFF", string(body[:4]))

	resp, err = http.Get(ts.URL + "/notes/H9.wav")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerateAndRender(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/harmony", "application/json", strings.NewReader(`{"sequence_length": 4, "seed": 5}`))
	require.NoError(t, err)
	var gen generateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&gen))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, gen.Sequence, 4)
	assert.NotEmpty(t, gen.ID)

	score, err := harmony.NewEvaluator(nil).Score(gen.Sequence)
	require.NoError(t, err)
	assert.Equal(t, score, gen.Score)

	resp, err = http.Get(ts.URL + "/harmony/" + gen.ID + ".wav")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	f, err := writeTemp(t, data)
	require.NoError(t, err)
	samples, sr, err := wavio.ReadMono(f)
	require.NoError(t, err)
	assert.Equal(t, 8000, sr)
	assert.Equal(t, 4*800, len(samples))
}

func TestGenerateRejectsInvalidLength(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/harmony", "application/json", strings.NewReader(`{"sequence_length": 0}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/harmony", "application/json", strings.NewReader(`{"sequence_length": `))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateWithEmptyBodyUsesDefaults(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/harmony", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var gen generateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&gen))
	assert.Len(t, gen.Sequence, harmony.DefaultConfig().SequenceLength)
}

func TestUnknownHarmonyID(t *testing.T) {
	ts := newTestServer(t)
	for _, id := range []string{"nope", "2b0c3f5e-6a59-4a77-9d7f-3f0f2f6a9e11"} {
		resp, err := http.Get(ts.URL + "/harmony/" + id + ".wav")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, id)
	}
}

func TestNewRequiresBank(t *testing.T) {
	_, err := New(Options{Config: harmony.DefaultConfig()})
	assert.Error(t, err)
}

func writeTemp(t *testing.T, data []byte) (string, error) {
	t.Helper()
	path := t.TempDir() + "/out.wav"
	return path, os.WriteFile(path, data, 0o644)
}
