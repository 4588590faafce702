package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lixenwraith/forager/store"
)

// MaxListLimit caps the trials listing page size
const MaxListLimit = 500

// Server exposes stored trial results over HTTP
type Server struct {
	db        store.DB
	logger    *log.Logger
	startTime time.Time
}

// NewServer creates a results server; a nil logger discards output
func NewServer(db store.DB, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		db:        db,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/trials", s.handleListTrials)
		r.Get("/trials/{id}", s.handleGetTrial)
		r.Get("/trials/{id}/clicks", s.handleListClicks)
	})

	return r
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// TrialsResponse is the body of GET /api/v1/trials
type TrialsResponse struct {
	Trials []store.Trial `json:"trials"`
	Count  int           `json:"count"`
}

// ClicksResponse is the body of GET /api/v1/trials/{id}/clicks
type ClicksResponse struct {
	TrialID string        `json:"trial_id"`
	Clicks  []store.Click `json:"clicks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Uptime: time.Since(s.startTime).Truncate(time.Second).String(),
	})
}

func (s *Server) handleListTrials(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxListLimit)
	}

	trials, err := s.db.ListTrials(limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, TrialsResponse{Trials: trials, Count: len(trials)})
}

func (s *Server) handleGetTrial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tr, err := s.db.GetTrial(id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "trial not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tr)
}

func (s *Server) handleListClicks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	clicks, err := s.db.ListClicks(id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "trial not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ClicksResponse{TrialID: id, Clicks: clicks})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("[API] encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:     msg,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Printf("[API] %s %s: %v", r.Method, r.URL.Path, err)
	s.writeError(w, r, http.StatusInternalServerError, "internal error")
}
