package engine

import (
	"sort"

	"github.com/ilhanBektas/cs2-backend/internal/models"
)

// ComputeStandings derives a ranked table from finished matches: 3
// points and a win to the higher score, 1 point each on an exact tie.
// Ordering is points desc then wins desc; remaining ties keep input
// order. Pure function; callers cache the result if they want to.
func ComputeStandings(matches []models.Match) []models.StandingEntry {
	entries := make([]*models.StandingEntry, 0)
	index := make(map[int64]*models.StandingEntry)

	entryFor := func(op models.Opponent) *models.StandingEntry {
		if e, ok := index[op.TeamID]; ok {
			return e
		}
		e := &models.StandingEntry{TeamID: op.TeamID, TeamName: op.Name}
		index[op.TeamID] = e
		entries = append(entries, e)
		return e
	}

	for i := range matches {
		m := &matches[i]
		if m.Status != models.StatusFinished || len(m.Opponents) != 2 || len(m.Results) != 2 {
			continue
		}
		home, away := entryFor(m.Opponents[0]), entryFor(m.Opponents[1])
		home.Played++
		away.Played++

		s0, s1 := scoreOf(m, 0), scoreOf(m, 1)
		switch {
		case s0 > s1:
			home.Points += 3
			home.Wins++
			away.Losses++
		case s1 > s0:
			away.Points += 3
			away.Wins++
			home.Losses++
		default:
			home.Points++
			away.Points++
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Wins > entries[j].Wins
	})

	table := make([]models.StandingEntry, len(entries))
	for i, e := range entries {
		e.Rank = i + 1
		table[i] = *e
	}
	return table
}

func scoreOf(m *models.Match, side int) int {
	teamID := m.Opponents[side].TeamID
	for _, r := range m.Results {
		if r.TeamID == teamID {
			return r.Score
		}
	}
	if side < len(m.Results) {
		return m.Results[side].Score
	}
	return 0
}
