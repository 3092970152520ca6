// Package models defines the core domain entities: matches, teams,
// tournaments, standings, and subscriptions.
package models

import (
	"errors"
	"fmt"
	"time"
)

// MatchStatus is the lifecycle state of a match as reported upstream.
type MatchStatus string

const (
	StatusNotStarted MatchStatus = "not_started"
	StatusRunning    MatchStatus = "running"
	StatusFinished   MatchStatus = "finished"
	StatusCanceled   MatchStatus = "canceled"
)

// Opponent is one side of a match: a team reference plus display fields.
type Opponent struct {
	TeamID   int64  `json:"team_id"`
	Name     string `json:"name"`
	Acronym  string `json:"acronym,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Result holds the score of one opponent, present once a match is
// running or finished.
type Result struct {
	TeamID int64 `json:"team_id"`
	Score  int   `json:"score"`
}

// Match is a single match record. ID is the sole merge key across
// snapshots; every other field is replaced wholesale by the newest
// snapshot that mentions the ID.
type Match struct {
	ID           int64       `json:"id"`
	Opponents    []Opponent  `json:"opponents"`
	Status       MatchStatus `json:"status"`
	BeginAt      time.Time   `json:"begin_at"`
	Results      []Result    `json:"results,omitempty"`
	LeagueName   string      `json:"league_name,omitempty"`
	SerieName    string      `json:"serie_name,omitempty"`
	TournamentID int64       `json:"tournament_id,omitempty"`
}

// Validate checks match field constraints.
func (m *Match) Validate() error {
	if m.ID == 0 {
		return errors.New("match ID must not be zero")
	}
	if len(m.Opponents) != 2 {
		return fmt.Errorf("match must have exactly 2 opponents, got %d", len(m.Opponents))
	}
	switch m.Status {
	case StatusNotStarted, StatusRunning, StatusFinished, StatusCanceled:
	default:
		return fmt.Errorf("unknown match status %q", m.Status)
	}
	if len(m.Results) != 0 && len(m.Results) != 2 {
		return fmt.Errorf("match results must be empty or a pair, got %d", len(m.Results))
	}
	return nil
}

// ScoreString renders the result pair as "a-b" in opponent order,
// or "" when no results are present. The detector compares this
// string against its persisted marker to spot score changes.
func (m *Match) ScoreString() string {
	if len(m.Results) != 2 {
		return ""
	}
	return fmt.Sprintf("%d-%d", m.scoreFor(0), m.scoreFor(1))
}

func (m *Match) scoreFor(side int) int {
	if side >= len(m.Opponents) {
		return 0
	}
	teamID := m.Opponents[side].TeamID
	for _, r := range m.Results {
		if r.TeamID == teamID {
			return r.Score
		}
	}
	// Upstream occasionally omits team IDs on results; fall back to
	// positional order.
	if side < len(m.Results) {
		return m.Results[side].Score
	}
	return 0
}

// Winner returns the opponent with the higher score. The second
// return is false when no result pair is present or the scores are
// tied: a drawn match has no winner.
func (m *Match) Winner() (Opponent, bool) {
	if len(m.Results) != 2 || len(m.Opponents) != 2 {
		return Opponent{}, false
	}
	s0, s1 := m.scoreFor(0), m.scoreFor(1)
	switch {
	case s0 > s1:
		return m.Opponents[0], true
	case s1 > s0:
		return m.Opponents[1], true
	default:
		return Opponent{}, false
	}
}

// OpponentNames returns both display names in opponent order.
func (m *Match) OpponentNames() [2]string {
	var names [2]string
	for i := 0; i < len(m.Opponents) && i < 2; i++ {
		names[i] = m.Opponents[i].Name
	}
	return names
}

// Team is a team record used for search/detail pass-through and for
// alias resolution in notification matching.
type Team struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Acronym  string `json:"acronym,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}
