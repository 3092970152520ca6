package models

import "time"

// Top three tiers per the upstream's classification.
var qualifyingTiers = map[string]bool{"s": true, "a": true, "b": true}

// Tournament is a tournament record from the upstream provider.
// PrizePool is nil when the upstream does not report one.
type Tournament struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	LeagueName string    `json:"league_name,omitempty"`
	Tier       string    `json:"tier"`
	PrizePool  *int64    `json:"prize_pool,omitempty"`
	BeginAt    time.Time `json:"begin_at"`
	EndAt      time.Time `json:"end_at"`
}

// Qualifies reports whether the tournament belongs in the cached set:
// top-three tier, or prize pool above minPrizePool.
func (t *Tournament) Qualifies(minPrizePool int64) bool {
	if qualifyingTiers[t.Tier] {
		return true
	}
	return t.PrizePool != nil && *t.PrizePool > minPrizePool
}

// StandingEntry is one ranked row of a derived tournament table.
// It is computed from finished matches, never persisted on its own.
type StandingEntry struct {
	TeamID   int64  `json:"team_id"`
	TeamName string `json:"team_name"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Points   int    `json:"points"`
	Played   int    `json:"matches_played"`
	Rank     int    `json:"rank"`
}
