// Package server exposes note playback and harmony generation over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cwbudde/algo-harmony/harmony"
	"github.com/cwbudde/algo-harmony/render"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const maxResults = 32

// Options configures a Server.
type Options struct {
	Bank    *render.SampleBank
	Config  harmony.Config
	WorkDir string
	Logger  *slog.Logger
}

// Server serves the HTTP API. Searches run one at a time.
type Server struct {
	bank    *render.SampleBank
	eval    *harmony.Evaluator
	base    harmony.Config
	workDir string
	log     *slog.Logger
	router  *mux.Router

	searchMu sync.Mutex

	mu      sync.Mutex
	results map[string]harmony.Sequence
	order   []string
}

// New builds a server. Rendered sequences are written below WorkDir
// (a fresh temporary directory when empty).
func New(opts Options) (*Server, error) {
	if opts.Bank == nil {
		return nil, fmt.Errorf("sample bank is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	workDir := opts.WorkDir
	if workDir == "" {
		dir, err := os.MkdirTemp("", "harmony-server-")
		if err != nil {
			return nil, err
		}
		workDir = dir
	} else if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		bank:    opts.Bank,
		eval:    harmony.NewEvaluator(nil),
		base:    opts.Config,
		workDir: workDir,
		log:     logger,
		results: make(map[string]harmony.Sequence),
	}
	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/notes", s.handleNotes).Methods(http.MethodGet)
	r.HandleFunc("/notes/{label:[A-Za-z0-9#]+}.wav", s.handleNoteSample).Methods(http.MethodGet)
	r.HandleFunc("/harmony", s.handleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/harmony/{id}.wav", s.handleHarmonyAudio).Methods(http.MethodGet)
	r.Use(s.logRequests)
	s.router = r
	return s, nil
}

// Handler returns the router wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	return cors.Default().Handler(s.router)
}

// WorkDir returns the directory that holds rendered sequences.
func (s *Server) WorkDir() string { return s.workDir }

type noteInfo struct {
	Label     string  `json:"label"`
	Frequency float64 `json:"frequency"`
	Index     int     `json:"index"`
}

type generateRequest struct {
	SequenceLength *int   `json:"sequence_length"`
	Seed           *int64 `json:"seed"`
}

type generateResponse struct {
	ID       string           `json:"id"`
	Sequence harmony.Sequence `json:"sequence"`
	Score    float64          `json:"score"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	notes := s.eval.Vocabulary().Notes()
	out := make([]noteInfo, len(notes))
	for i, n := range notes {
		out[i] = noteInfo{Label: n.Label, Frequency: n.Hz, Index: i}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNoteSample(w http.ResponseWriter, r *http.Request) {
	label := mux.Vars(r)["label"]
	if _, err := s.eval.Vocabulary().IndexOf(label); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	path := s.bank.Path(label)
	if _, err := os.Stat(path); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("no sample for %s", label)})
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, path)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	cfg := s.base
	if req.SequenceLength != nil {
		cfg.SequenceLength = *req.SequenceLength
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	} else {
		cfg.Seed = time.Now().UnixNano()
	}

	s.searchMu.Lock()
	res, err := harmony.Search(r.Context(), cfg, harmony.WithEvaluator(s.eval))
	s.searchMu.Unlock()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, harmony.ErrInvalidConfiguration) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	id := uuid.NewString()
	s.store(id, res.Best)
	s.log.Info("harmony generated", "id", id, "sequence", res.Best, "score", res.Score, "improvements", res.Improvements)
	writeJSON(w, http.StatusOK, generateResponse{ID: id, Sequence: res.Best, Score: res.Score})
}

func (s *Server) handleHarmonyAudio(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown harmony id"})
		return
	}
	seq, ok := s.lookup(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown harmony id"})
		return
	}
	path := filepath.Join(s.workDir, id+".wav")
	if _, err := os.Stat(path); err != nil {
		if _, err := s.bank.WriteSequence(path, seq); err != nil {
			s.log.Error("render failed", "id", id, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
	}
	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, path)
}

func (s *Server) store(id string, seq harmony.Sequence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[id] = seq
	s.order = append(s.order, id)
	for len(s.order) > maxResults {
		old := s.order[0]
		s.order = s.order[1:]
		delete(s.results, old)
		os.Remove(filepath.Join(s.workDir, old+".wav"))
	}
}

func (s *Server) lookup(id string) (harmony.Sequence, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq, ok := s.results[id]
	return seq, ok
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
