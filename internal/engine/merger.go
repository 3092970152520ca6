package engine

import (
	"sort"

	"github.com/ilhanBektas/cs2-backend/internal/models"
)

// MergeMatches reconciles a freshly fetched snapshot with the
// previously persisted list. The upstream only returns a bounded time
// window per request, so matches that scrolled out of the query window
// must survive here: the previous list seeds the result and the new
// snapshot overwrites by ID. Duplicate IDs inside one fetch resolve
// last-write-wins. An empty snapshot is a no-op, never a history wipe.
func MergeMatches(previous, fetched []models.Match) []models.Match {
	if len(fetched) == 0 {
		return previous
	}

	byID := make(map[int64]models.Match, len(previous)+len(fetched))
	for _, m := range previous {
		byID[m.ID] = m
	}
	for _, m := range fetched {
		byID[m.ID] = m
	}

	merged := make([]models.Match, 0, len(byID))
	for _, m := range byID {
		merged = append(merged, m)
	}
	// Ascending by start time; ID breaks ties so repeated merges of
	// the same data produce the same ordering.
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].BeginAt.Equal(merged[j].BeginAt) {
			return merged[i].BeginAt.Before(merged[j].BeginAt)
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}

// QualifyingTournaments filters a fetched tournament list down to the
// cached set: top-tier or prize pool above minPrizePool. The result is
// a current-window view and replaces the prior blob wholesale.
func QualifyingTournaments(fetched []models.Tournament, minPrizePool int64) []models.Tournament {
	qualified := make([]models.Tournament, 0, len(fetched))
	for _, t := range fetched {
		if t.Qualifies(minPrizePool) {
			qualified = append(qualified, t)
		}
	}
	sort.Slice(qualified, func(i, j int) bool {
		if !qualified[i].BeginAt.Equal(qualified[j].BeginAt) {
			return qualified[i].BeginAt.Before(qualified[j].BeginAt)
		}
		return qualified[i].ID < qualified[j].ID
	})
	return qualified
}
