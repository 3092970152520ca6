package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhanBektas/cs2-backend/internal/models"
)

func match(id int64, status models.MatchStatus, beginAt time.Time) models.Match {
	return models.Match{
		ID:     id,
		Status: status,
		Opponents: []models.Opponent{
			{TeamID: id*10 + 1, Name: "Home"},
			{TeamID: id*10 + 2, Name: "Away"},
		},
		BeginAt: beginAt,
	}
}

func TestMergeMatchesIdempotent(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snapshot := []models.Match{
		match(2, models.StatusNotStarted, base.Add(2*time.Hour)),
		match(1, models.StatusRunning, base),
	}

	once := MergeMatches(nil, snapshot)
	twice := MergeMatches(once, snapshot)
	assert.Equal(t, once, twice, "merging the same snapshot twice must be a fixpoint")
}

func TestMergeMatchesRetainsScrolledOutMatches(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := match(1, models.StatusFinished, base.Add(-48*time.Hour))

	merged := MergeMatches([]models.Match{old}, []models.Match{
		match(2, models.StatusNotStarted, base),
	})

	require.Len(t, merged, 2)
	assert.Equal(t, int64(1), merged[0].ID, "match outside the fetch window stays in history")
}

func TestMergeMatchesNewestRecordWins(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := match(1, models.StatusRunning, base)

	updated := match(1, models.StatusFinished, base)
	updated.Results = []models.Result{
		{TeamID: 11, Score: 2},
		{TeamID: 12, Score: 0},
	}

	merged := MergeMatches([]models.Match{prev}, []models.Match{updated})
	require.Len(t, merged, 1)
	assert.Equal(t, models.StatusFinished, merged[0].Status)
	assert.Len(t, merged[0].Results, 2)
}

func TestMergeMatchesDuplicateIDsInOneFetch(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := match(1, models.StatusRunning, base)
	second := match(1, models.StatusFinished, base)

	// Same ID across two pages of one fetch: last write wins.
	merged := MergeMatches(nil, []models.Match{first, second})
	require.Len(t, merged, 1)
	assert.Equal(t, models.StatusFinished, merged[0].Status)
}

func TestMergeMatchesEmptySnapshotIsNoop(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	previous := []models.Match{match(1, models.StatusFinished, base)}

	merged := MergeMatches(previous, nil)
	assert.Equal(t, previous, merged, "an empty fetch must never clear history")
}

func TestMergeMatchesSortedByStartTime(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	merged := MergeMatches(
		[]models.Match{match(3, models.StatusNotStarted, base.Add(3*time.Hour))},
		[]models.Match{
			match(1, models.StatusNotStarted, base.Add(time.Hour)),
			match(2, models.StatusNotStarted, base.Add(2*time.Hour)),
		},
	)

	require.Len(t, merged, 3)
	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i].BeginAt.Before(merged[i-1].BeginAt),
			"merged list must be ascending by start time")
	}
}

func TestQualifyingTournaments(t *testing.T) {
	prize := func(v int64) *int64 { return &v }
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	fetched := []models.Tournament{
		{ID: 1, Tier: "s", BeginAt: base.Add(24 * time.Hour)},
		{ID: 2, Tier: "c", BeginAt: base},
		{ID: 3, Tier: "d", PrizePool: prize(500000), BeginAt: base.Add(12 * time.Hour)},
	}

	got := QualifyingTournaments(fetched, 100000)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
}

func TestQualifyingTournamentsEmptyIsNotNil(t *testing.T) {
	got := QualifyingTournaments([]models.Tournament{{ID: 1, Tier: "c"}}, 100000)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
