// Package api exposes the preparation pipeline over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gocmr/app"
	"gocmr/domain/core"
	"gocmr/domain/encounter"
	"gocmr/domain/model"
	"gocmr/internal"
	"gocmr/internal/report"
	"gocmr/ports"
)

// Server wires the preparation service and run repository to HTTP routes.
type Server struct {
	prep *app.PrepService
	runs ports.RunRepository
	log  *internal.Logger
}

// NewServer creates an API server.
func NewServer(prep *app.PrepService, runs ports.RunRepository, log *internal.Logger) *Server {
	return &Server{prep: prep, runs: runs, log: log}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/prepare", s.handlePrepare)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/report", s.handleRunReport)
	})
	return r
}

type prepareRequest struct {
	Capture           *encounter.Matrix `json:"capture"`
	Test              *encounter.Matrix `json:"test"`
	Priors            *model.Priors     `json:"priors,omitempty"`
	Seed              int64             `json:"seed"`
	Chains            int               `json:"chains"`
	DropNeverDetected bool              `json:"drop_never_detected"`
}

func (s *Server) handlePrepare(w http.ResponseWriter, r *http.Request) {
	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Capture == nil || req.Test == nil {
		s.writeError(w, http.StatusBadRequest, errors.New("capture and test matrices are required"))
		return
	}
	if req.Chains < 1 {
		req.Chains = 3
	}

	prepReq := app.PrepRequest{
		Capture:           req.Capture,
		Test:              req.Test,
		Seed:              req.Seed,
		Chains:            req.Chains,
		DropNeverDetected: req.DropNeverDetected,
	}
	if req.Priors != nil {
		prepReq.Priors = *req.Priors
	}

	result, err := s.prep.Prepare(r.Context(), prepReq)
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsEncodingError(err) || core.IsModelError(err) {
			status = http.StatusUnprocessableEntity
		}
		s.writeError(w, status, err)
		return
	}

	record := ports.RunRecord{Manifest: result.Bundle.Manifest, Bundle: result.Bundle}
	if err := s.runs.SaveRun(r.Context(), record); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, result.Bundle)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	records, err := s.runs.ListRuns(r.Context(), 50)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	manifests := make([]interface{}, 0, len(records))
	for _, record := range records {
		manifests = append(manifests, record.Manifest)
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"runs": manifests})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	record, ok := s.getRun(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	record, ok := s.getRun(w, r)
	if !ok {
		return
	}
	if record.Bundle == nil {
		s.writeError(w, http.StatusNotFound, errors.New("run has no stored bundle"))
		return
	}
	md := report.BuildMarkdown(record.Bundle, record.Summaries)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.RenderHTML(md))
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) (*ports.RunRecord, bool) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	record, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrRunNotFound) {
			status = http.StatusNotFound
		}
		s.writeError(w, status, err)
		return nil, false
	}
	return record, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.log.Warn("http %d: %v", status, err)
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
