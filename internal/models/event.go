package models

import "github.com/google/uuid"

// EventKind identifies a notification-worthy match transition.
type EventKind string

const (
	EventMatchStarting EventKind = "match_starting"
	EventMatchFinished EventKind = "match_finished"
	EventScoreUpdate   EventKind = "score_update"
	EventMatchReminder EventKind = "match_reminder"
)

// Event is one detected transition for one match, produced by the
// detector and consumed by the dispatcher. Teams carries both
// opponent display names used for subscriber matching.
type Event struct {
	ID      string    `json:"id"`
	Kind    EventKind `json:"kind"`
	MatchID int64     `json:"match_id"`
	Teams   [2]string `json:"teams"`

	// Kind-specific fields.
	Score      string `json:"score,omitempty"`       // score_update, match_finished
	WinnerName string `json:"winner_name,omitempty"` // match_finished, empty on a draw
	Draw       bool   `json:"draw,omitempty"`        // match_finished with tied scores
}

// NewEvent builds an event with a fresh ID for the given match.
func NewEvent(kind EventKind, m *Match) Event {
	return Event{
		ID:      uuid.New().String(),
		Kind:    kind,
		MatchID: m.ID,
		Teams:   m.OpponentNames(),
	}
}
