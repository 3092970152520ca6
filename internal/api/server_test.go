package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhanBektas/cs2-backend/internal/cache"
	"github.com/ilhanBektas/cs2-backend/internal/engine"
	"github.com/ilhanBektas/cs2-backend/internal/kv"
	"github.com/ilhanBektas/cs2-backend/internal/models"
	"github.com/ilhanBektas/cs2-backend/internal/subscription"
)

type fixture struct {
	router http.Handler
	cache  *cache.Cache
}

type fakeProvider struct{}

func (fakeProvider) FetchMatches(context.Context) ([]models.Match, error)         { return nil, nil }
func (fakeProvider) FetchTournaments(context.Context) ([]models.Tournament, error) { return nil, nil }

type fakeSearcher struct {
	teams []models.Team
	err   error
}

func (f fakeSearcher) SearchTeams(context.Context, string) ([]models.Team, error) {
	return f.teams, f.err
}

func newFixture(t *testing.T, teams TeamSearcher) fixture {
	t.Helper()
	c := cache.New(kv.NewMemory(), cache.Options{})
	reg := subscription.NewRegistry(c, nil)
	e := engine.New(c, fakeProvider{}, nil, engine.Config{})
	return fixture{router: NewRouter(e, reg, teams), cache: c}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func seedMatch(tournamentID int64) models.Match {
	return models.Match{
		ID:     1,
		Status: models.StatusFinished,
		Opponents: []models.Opponent{
			{TeamID: 10, Name: "Natus Vincere"},
			{TeamID: 20, Name: "FaZe"},
		},
		Results: []models.Result{
			{TeamID: 10, Score: 2},
			{TeamID: 20, Score: 0},
		},
		BeginAt:      time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		TournamentID: tournamentID,
	}
}

func TestMatchesEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	f.cache.SaveMatches([]models.Match{seedMatch(5)})

	rec := f.do(t, http.MethodGet, "/api/matches", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Matches    []models.Match `json:"matches"`
		LastUpdate string         `json:"lastUpdate"`
		Count      int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.NotEmpty(t, body.LastUpdate)
}

func TestMatchesEndpointUnavailable(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/matches", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "temporarily unavailable")
}

func TestTournamentsEndpointEmptyList(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/tournaments", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body engine.TournamentsSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Count)
	assert.NotNil(t, body.Tournaments)
}

func TestStandingsEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	f.cache.SaveMatches([]models.Match{seedMatch(5)})
	f.cache.SaveTournaments([]models.Tournament{{ID: 5, Name: "Major", Tier: "s"}})

	rec := f.do(t, http.MethodGet, "/api/tournaments/5/standings", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body engine.StandingsView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Major", body.Tournament.Name)
	require.Len(t, body.Standings, 2)
	assert.Equal(t, "Natus Vincere", body.Standings[0].TeamName)
}

func TestStandingsEndpointNotFound(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/api/tournaments/999/standings", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/tournaments/abc/standings", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTeamSearchEndpoint(t *testing.T) {
	f := newFixture(t, fakeSearcher{teams: []models.Team{{ID: 10, Name: "Natus Vincere"}}})

	rec := f.do(t, http.MethodGet, "/api/teams?q=navi", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Natus Vincere")

	rec = f.do(t, http.MethodGet, "/api/teams", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTeamSearchUpstreamFailureDegradesToEmpty(t *testing.T) {
	f := newFixture(t, fakeSearcher{err: errors.New("rate limited")})

	rec := f.do(t, http.MethodGet, "/api/teams?q=navi", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestSubscribeEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/subscribe",
		`{"token":"tok-1","favoriteTeams":["NaVi"],"language":"en"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestSubscribeEndpointInvalidArgument(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/subscribe", `{"token":"","favoriteTeams":["NaVi"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/subscribe", `{"token":"tok","favoriteTeams":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/subscribe", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnsubscribeEndpointAlwaysSucceeds(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/unsubscribe", `{"token":"never-registered"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
