// Package http exposes a small control surface over a running engine:
// status polling, play requests and the global controls a debug console or
// external tool needs. It is a host surface, not part of the library API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelvm/reel"
	"github.com/reelvm/reel/pkg/domain"
	"github.com/reelvm/reel/pkg/ports"
)

// Controller is the slice of the engine the control surface drives.
type Controller interface {
	Status() reel.Status
	PlayFrom(ctx context.Context, graphID string, startIndex int, overrides ...domain.Override) error
	SkipAll(ctx context.Context)
	StopAll(graphID string) int
	Pause()
	Resume()
	SceneChange() int
	Save(ctx context.Context, slotID string) (string, error)
	Load(ctx context.Context, slotID string) error
	Saves(ctx context.Context) ([]string, error)
	Library() ports.GraphLibrary
}

// Server wires a Controller into HTTP handlers.
type Server struct {
	ctrl Controller
}

// NewHandler builds the routed handler. gatherer may be nil to omit the
// /metrics endpoint.
func NewHandler(ctrl Controller, gatherer prometheus.Gatherer) http.Handler {
	s := &Server{ctrl: ctrl}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/play", s.handlePlay)
		r.Post("/skip", s.handleSkip)
		r.Post("/pause", s.handlePause)
		r.Post("/scene-change", s.handleSceneChange)
		r.Post("/stop", s.handleStop)
		r.Get("/saves", s.handleSaves)
		r.Post("/saves", s.handleSave)
		r.Post("/saves/{slot}", s.handleSave)
		r.Post("/saves/{slot}/load", s.handleLoad)
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": reel.Version,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

type playRequest struct {
	Graph     string            `json:"graph"`
	FromNode  int               `json:"from_node"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var body playRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Graph == "" {
		http.Error(w, "graph is required", http.StatusBadRequest)
		return
	}

	g, err := s.ctrl.Library().Graph(body.Graph)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	// Arguments arrive as strings; parse each through its declared parameter
	// type so the binder sees a typed value, not a mismatching string.
	overrides := make([]domain.Override, 0, len(body.Arguments))
	for id, raw := range body.Arguments {
		value := domain.StringValue(raw)
		if def := g.Param(id); def != nil {
			parsed, err := domain.ParseValue(def.Type, raw)
			if err != nil {
				http.Error(w, fmt.Sprintf("argument %q: %v", id, err), http.StatusBadRequest)
				return
			}
			value = parsed
		}
		overrides = append(overrides, domain.Override{ID: id, Value: value})
	}

	err = s.ctrl.PlayFrom(r.Context(), body.Graph, body.FromNode, overrides...)
	switch {
	case errors.Is(err, domain.ErrGraphNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case err != nil:
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		writeJSON(w, http.StatusAccepted, s.ctrl.Status())
	}
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	s.ctrl.SkipAll(r.Context())
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Paused bool `json:"paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Paused {
		s.ctrl.Pause()
	} else {
		s.ctrl.Resume()
	}
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleSceneChange(w http.ResponseWriter, r *http.Request) {
	killed := s.ctrl.SceneChange()
	writeJSON(w, http.StatusOK, map[string]int{"killed": killed})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Graph string `json:"graph"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Graph == "" {
		http.Error(w, "graph is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"killed": s.ctrl.StopAll(body.Graph)})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	// Posting to /saves without a slot gets a generated id.
	slot, err := s.ctrl.Save(r.Context(), chi.URLParam(r, "slot"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"slot": slot})
}

func (s *Server) handleSaves(w http.ResponseWriter, r *http.Request) {
	slots, err := s.ctrl.Saves(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"slots": slots})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	slot := chi.URLParam(r, "slot")
	err := s.ctrl.Load(r.Context(), slot)
	switch {
	case errors.Is(err, domain.ErrSaveNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, s.ctrl.Status())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
