package pandascore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhanBektas/cs2-backend/internal/models"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", time.Second, ClientConfig{
		PerPage:        2,
		MaxPages:       3,
		MaxRetries:     2,
		RetryDelayBase: time.Millisecond,
	})
}

func matchJSON(id int64, status string) map[string]any {
	return map[string]any{
		"id":       id,
		"status":   status,
		"begin_at": "2026-03-01T18:00:00Z",
		"opponents": []map[string]any{
			{"opponent": map[string]any{"id": 10, "name": "Natus Vincere", "acronym": "NAVI"}},
			{"opponent": map[string]any{"id": 20, "name": "FaZe"}},
		},
		"results": []map[string]any{
			{"team_id": 10, "score": 1},
			{"team_id": 20, "score": 0},
		},
		"league":     map[string]any{"name": "BLAST"},
		"tournament": map[string]any{"id": 5},
	}
}

func TestFetchMatchesPaginates(t *testing.T) {
	var pages []string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		pages = append(pages, r.URL.Path+"?page="+r.URL.Query().Get("page"))

		switch r.URL.Path {
		case "/csgo/matches/upcoming":
			// Full first page forces a second fetch; short second page stops.
			if r.URL.Query().Get("page") == "1" {
				_ = json.NewEncoder(w).Encode([]any{matchJSON(1, "not_started"), matchJSON(2, "not_started")})
			} else {
				_ = json.NewEncoder(w).Encode([]any{matchJSON(3, "not_started")})
			}
		default:
			_ = json.NewEncoder(w).Encode([]any{})
		}
	})

	c := testClient(t, h)
	matches, err := c.FetchMatches(context.Background())
	require.NoError(t, err)
	assert.Len(t, matches, 3)
	assert.Contains(t, pages, "/csgo/matches/upcoming?page=2")
	assert.Contains(t, pages, "/csgo/matches/running?page=1")
	assert.Contains(t, pages, "/csgo/matches/past?page=1")

	m := matches[0]
	assert.Equal(t, int64(1), m.ID)
	assert.Equal(t, models.StatusNotStarted, m.Status)
	assert.Equal(t, "Natus Vincere", m.Opponents[0].Name)
	assert.Equal(t, "BLAST", m.LeagueName)
	assert.Equal(t, int64(5), m.TournamentID)
	assert.Equal(t, "1-0", m.ScoreString())
}

func TestFetchMatchesSkipsUnknownStatus(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/csgo/matches/upcoming" {
			_ = json.NewEncoder(w).Encode([]any{matchJSON(1, "postponed")})
			return
		}
		_ = json.NewEncoder(w).Encode([]any{})
	})

	c := testClient(t, h)
	matches, err := c.FetchMatches(context.Background())
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFetchMatchesRetriesThenFails(t *testing.T) {
	attempts := 0
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	})

	c := testClient(t, h)
	_, err := c.FetchMatches(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, attempts)
}

func TestFetchTournamentsParsesPrizePool(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/csgo/tournaments", r.URL.Path)
		fmt.Fprint(w, `[
			{"id": 5, "name": "Major", "tier": "S", "prizepool": "$1,250,000", "begin_at": "2026-03-01T00:00:00Z"},
			{"id": 6, "name": "Open Qualifier", "tier": "d", "prizepool": ""}
		]`)
	})

	c := testClient(t, h)
	tournaments, err := c.FetchTournaments(context.Background())
	require.NoError(t, err)
	require.Len(t, tournaments, 2)

	assert.Equal(t, "s", tournaments[0].Tier)
	require.NotNil(t, tournaments[0].PrizePool)
	assert.Equal(t, int64(1250000), *tournaments[0].PrizePool)
	assert.Nil(t, tournaments[1].PrizePool)
}

func TestSearchTeams(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "navi", r.URL.Query().Get("search[name]"))
		fmt.Fprint(w, `[{"id": 10, "name": "Natus Vincere", "acronym": "NAVI"}]`)
	})

	c := testClient(t, h)
	teams, err := c.SearchTeams(context.Background(), "navi")
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "NAVI", teams[0].Acronym)
}
