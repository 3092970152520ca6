// Package engine is the data synchronization and event-detection core:
// it reconciles upstream snapshots into one canonical history, detects
// notification-worthy transitions, and serves read snapshots.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ilhanBektas/cs2-backend/internal/cache"
	"github.com/ilhanBektas/cs2-backend/internal/logger"
	"github.com/ilhanBektas/cs2-backend/internal/metrics"
	"github.com/ilhanBektas/cs2-backend/internal/models"
	"github.com/ilhanBektas/cs2-backend/internal/notify"
)

// Provider is the upstream data source capability.
type Provider interface {
	FetchMatches(ctx context.Context) ([]models.Match, error)
	FetchTournaments(ctx context.Context) ([]models.Tournament, error)
}

// Config tunes detection and filtering.
type Config struct {
	// ReminderWindow is how close to start a match must be before the
	// imminent-start reminder fires.
	ReminderWindow time.Duration
	// MinPrizePool qualifies lower-tier tournaments for the cache.
	MinPrizePool int64
}

// Engine owns one cycle of fetch, merge, detect, dispatch, plus the
// read accessors the API layer calls. It holds no match data in memory
// itself; the cache does.
type Engine struct {
	cache      *cache.Cache
	provider   Provider
	dispatcher *notify.Dispatcher
	cfg        Config

	now func() time.Time
}

// New wires an engine. dispatcher may be nil when notifications are
// disabled; detection still runs so markers stay current.
func New(c *cache.Cache, p Provider, d *notify.Dispatcher, cfg Config) *Engine {
	if cfg.ReminderWindow <= 0 {
		cfg.ReminderWindow = 15 * time.Minute
	}
	if cfg.MinPrizePool <= 0 {
		cfg.MinPrizePool = 100000
	}
	return &Engine{cache: c, provider: p, dispatcher: d, cfg: cfg, now: time.Now}
}

// RunCycle performs one fetch-and-merge pass. An upstream failure
// skips the cycle and leaves the prior cache untouched; dispatch
// failures are logged per event and never abort the cycle.
func (e *Engine) RunCycle(ctx context.Context) error {
	fetched, err := e.provider.FetchMatches(ctx)
	if err != nil {
		metrics.CyclesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to fetch matches: %w", err)
	}

	previous, _, _ := e.cache.Matches()
	merged := MergeMatches(previous, fetched)
	e.cache.SaveMatches(merged)
	logger.Debug("Merged %d fetched into %d total matches", len(fetched), len(merged))

	events := e.detect(merged)
	for _, ev := range events {
		metrics.EventsDetected.WithLabelValues(string(ev.Kind)).Inc()
		if e.dispatcher == nil {
			continue
		}
		if err := e.dispatcher.Dispatch(ctx, ev); err != nil {
			logger.Error("Dispatch failed for %s on match %d: %v", ev.Kind, ev.MatchID, err)
		}
	}
	if len(events) > 0 {
		logger.Info("Detected %d match events", len(events))
	}

	if tournaments, err := e.provider.FetchTournaments(ctx); err != nil {
		logger.Warn("Failed to fetch tournaments, keeping prior cache: %v", err)
	} else {
		e.cache.SaveTournaments(QualifyingTournaments(tournaments, e.cfg.MinPrizePool))
	}

	metrics.CyclesTotal.WithLabelValues("ok").Inc()
	return nil
}

// MatchesSnapshot is the read-API shape for the matches resource.
type MatchesSnapshot struct {
	Matches    []models.Match `json:"matches"`
	LastUpdate string         `json:"lastUpdate"`
	Count      int            `json:"count"`
}

// Matches returns the reconciled history. ok is false only when the
// store is unreachable and no in-memory snapshot exists yet.
func (e *Engine) Matches() (MatchesSnapshot, bool) {
	matches, last, ok := e.cache.Matches()
	if !ok {
		return MatchesSnapshot{}, false
	}
	if matches == nil {
		matches = []models.Match{}
	}
	return MatchesSnapshot{
		Matches:    matches,
		LastUpdate: formatTime(last),
		Count:      len(matches),
	}, true
}

// TournamentsSnapshot is the read-API shape for the tournaments
// resource. An empty list is a valid, non-error response.
type TournamentsSnapshot struct {
	Tournaments []models.Tournament `json:"tournaments"`
	LastUpdate  string              `json:"lastUpdate"`
	Count       int                 `json:"count"`
}

// Tournaments returns the cached qualifying tournaments.
func (e *Engine) Tournaments() TournamentsSnapshot {
	tournaments, last := e.cache.Tournaments()
	return TournamentsSnapshot{
		Tournaments: tournaments,
		LastUpdate:  formatTime(last),
		Count:       len(tournaments),
	}
}

// StandingsView is the read-API shape for one tournament's standings.
type StandingsView struct {
	Tournament models.Tournament      `json:"tournament"`
	Standings  []models.StandingEntry `json:"standings"`
	Matches    []models.Match         `json:"matches"`
	LastUpdate string                 `json:"lastUpdate"`
}

// Standings derives (or serves the cached copy of) the ranked table
// for one tournament. ok is false when the tournament is unknown.
func (e *Engine) Standings(tournamentID int64) (StandingsView, bool) {
	var tournament models.Tournament
	found := false
	cached, _ := e.cache.Tournaments()
	for _, t := range cached {
		if t.ID == tournamentID {
			tournament = t
			found = true
			break
		}
	}

	matches, last, _ := e.cache.Matches()
	finished := make([]models.Match, 0)
	for _, m := range matches {
		if m.TournamentID == tournamentID && m.Status == models.StatusFinished {
			finished = append(finished, m)
		}
	}
	if !found && len(finished) == 0 {
		return StandingsView{}, false
	}

	entries, ok := e.cache.Standings(tournamentID)
	if !ok {
		entries = ComputeStandings(finished)
		e.cache.SaveStandings(tournamentID, entries)
	}
	if entries == nil {
		entries = []models.StandingEntry{}
	}

	return StandingsView{
		Tournament: tournament,
		Standings:  entries,
		Matches:    finished,
		LastUpdate: formatTime(last),
	}, true
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
