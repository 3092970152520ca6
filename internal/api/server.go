// Package api exposes the read API and subscription endpoints as thin
// REST wrappers around the engine.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ilhanBektas/cs2-backend/internal/engine"
	"github.com/ilhanBektas/cs2-backend/internal/logger"
	"github.com/ilhanBektas/cs2-backend/internal/models"
	"github.com/ilhanBektas/cs2-backend/internal/subscription"
)

// TeamSearcher is the upstream pass-through used by the team search
// endpoint. May be nil when the provider is not configured.
type TeamSearcher interface {
	SearchTeams(ctx context.Context, query string) ([]models.Team, error)
}

// Server holds the handler dependencies.
type Server struct {
	engine   *engine.Engine
	registry *subscription.Registry
	teams    TeamSearcher
}

// NewRouter builds the HTTP routes. The read handlers only ever talk
// to the engine's cached snapshots; they never trigger a fetch.
func NewRouter(e *engine.Engine, registry *subscription.Registry, teams TeamSearcher) http.Handler {
	s := &Server{engine: e, registry: registry, teams: teams}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/matches", s.handleMatches)
		r.Get("/tournaments", s.handleTournaments)
		r.Get("/tournaments/{id}/standings", s.handleStandings)
		r.Get("/teams", s.handleTeamSearch)
		r.Post("/subscribe", s.handleSubscribe)
		r.Post("/unsubscribe", s.handleUnsubscribe)
	})

	return r
}

func (s *Server) handleMatches(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.engine.Matches()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "match data temporarily unavailable")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleTournaments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Tournaments())
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tournament id")
		return
	}
	view, ok := s.engine.Standings(id)
	if !ok {
		writeError(w, http.StatusNotFound, "tournament not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleTeamSearch passes the query through to the upstream provider.
// Upstream trouble degrades to an empty list, not an error response.
func (s *Server) handleTeamSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	teams := []models.Team{}
	if s.teams != nil {
		found, err := s.teams.SearchTeams(r.Context(), query)
		if err != nil {
			logger.Warn("Team search failed for %q: %v", query, err)
		} else if found != nil {
			teams = found
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"teams": teams, "count": len(teams)})
}

type subscribeRequest struct {
	Token         string   `json:"token"`
	FavoriteTeams []string `json:"favoriteTeams"`
	Language      string   `json:"language"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.registry.Register(req.Token, req.FavoriteTeams, req.Language); err != nil {
		if errors.Is(err, subscription.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to register subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type unsubscribeRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Idempotent: unknown tokens unsubscribe successfully too.
	s.registry.Unregister(req.Token)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
