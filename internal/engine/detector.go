package engine

import (
	"time"

	"github.com/ilhanBektas/cs2-backend/internal/models"
)

// detect diffs the merged match list against the persisted markers and
// returns the events that fire this pass. Marker reads and writes are
// not transactional; overlapping cycles for the same match can
// double-fire or miss a transition. Accepted: the next cycle
// re-converges, and a stray duplicate beats a lock around every pass.
func (e *Engine) detect(matches []models.Match) []models.Event {
	now := e.now()
	var events []models.Event
	for i := range matches {
		events = append(events, e.detectMatch(&matches[i], now)...)
	}
	return events
}

func (e *Engine) detectMatch(m *models.Match, now time.Time) []models.Event {
	var events []models.Event

	prev, seen := e.cache.MatchStatus(m.ID)
	switch {
	case !seen:
		// First observation is the baseline: record, emit nothing.
		e.cache.SetMatchStatus(m.ID, m.Status)
		if s := m.ScoreString(); s != "" {
			e.cache.SetMatchScore(m.ID, s)
		}

	case prev == models.StatusNotStarted && m.Status == models.StatusRunning:
		events = append(events, models.NewEvent(models.EventMatchStarting, m))
		e.cache.SetMatchStatus(m.ID, m.Status)
		if s := m.ScoreString(); s != "" {
			e.cache.SetMatchScore(m.ID, s)
		}

	case prev == models.StatusRunning && m.Status == models.StatusFinished:
		ev := models.NewEvent(models.EventMatchFinished, m)
		ev.Score = m.ScoreString()
		if winner, ok := m.Winner(); ok {
			ev.WinnerName = winner.Name
		} else {
			ev.Draw = true
		}
		events = append(events, ev)
		e.cache.SetMatchStatus(m.ID, m.Status)
		if ev.Score != "" {
			e.cache.SetMatchScore(m.ID, ev.Score)
		}

	case prev == models.StatusRunning && m.Status == models.StatusRunning:
		if score := m.ScoreString(); score != "" {
			last, ok := e.cache.MatchScore(m.ID)
			if ok && last != score {
				ev := models.NewEvent(models.EventScoreUpdate, m)
				ev.Score = score
				events = append(events, ev)
			}
			if !ok || last != score {
				e.cache.SetMatchScore(m.ID, score)
			}
		}

	case prev != m.Status:
		// No event defined for this transition (cancellations,
		// not_started straight to finished); marker still advances.
		e.cache.SetMatchStatus(m.ID, m.Status)
	}

	// Reminder is independent of status transitions; the same pass may
	// emit both. Fires at most once per match, ever.
	if m.Status == models.StatusNotStarted && !m.BeginAt.IsZero() {
		until := m.BeginAt.Sub(now)
		if until >= 0 && until <= e.cfg.ReminderWindow && !e.cache.ReminderSent(m.ID) {
			events = append(events, models.NewEvent(models.EventMatchReminder, m))
			e.cache.MarkReminderSent(m.ID)
		}
	}

	return events
}
