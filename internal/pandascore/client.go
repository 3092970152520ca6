// Package pandascore fetches CS2 match, tournament, and team data from
// the PandaScore REST API.
package pandascore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ilhanBektas/cs2-backend/internal/models"
)

// Client provides access to the PandaScore API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	perPage        int
	maxPages       int
	maxRetries     int
	retryDelayBase time.Duration
}

// ClientConfig tunes paging and retry behavior.
type ClientConfig struct {
	PerPage        int
	MaxPages       int
	MaxRetries     int
	RetryDelayBase time.Duration
}

// NewClient creates a PandaScore client.
func NewClient(baseURL, token string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 50
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 3
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		token:          token,
		httpClient:     &http.Client{Timeout: timeout},
		perPage:        cfg.PerPage,
		maxPages:       cfg.MaxPages,
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
	}
}

type matchDTO struct {
	ID        int64      `json:"id"`
	Status    string     `json:"status"`
	BeginAt   *time.Time `json:"begin_at"`
	Opponents []struct {
		Opponent teamDTO `json:"opponent"`
	} `json:"opponents"`
	Results []struct {
		TeamID int64 `json:"team_id"`
		Score  int   `json:"score"`
	} `json:"results"`
	League struct {
		Name string `json:"name"`
	} `json:"league"`
	Serie struct {
		FullName string `json:"full_name"`
	} `json:"serie"`
	Tournament struct {
		ID int64 `json:"id"`
	} `json:"tournament"`
}

type teamDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Acronym  string `json:"acronym"`
	ImageURL string `json:"image_url"`
}

type tournamentDTO struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Tier    string     `json:"tier"`
	Prize   string     `json:"prizepool"`
	BeginAt *time.Time `json:"begin_at"`
	EndAt   *time.Time `json:"end_at"`
	League  struct {
		Name string `json:"name"`
	} `json:"league"`
}

// FetchMatches pulls the upcoming, running, and past match windows and
// returns them as one snapshot. Page boundaries can repeat a match id;
// the merger deduplicates.
func (c *Client) FetchMatches(ctx context.Context) ([]models.Match, error) {
	var all []models.Match
	for _, window := range []string{"upcoming", "running", "past"} {
		matches, err := c.fetchMatchWindow(ctx, window)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s matches: %w", window, err)
		}
		all = append(all, matches...)
	}
	return all, nil
}

func (c *Client) fetchMatchWindow(ctx context.Context, window string) ([]models.Match, error) {
	var out []models.Match
	for page := 1; page <= c.maxPages; page++ {
		q := url.Values{}
		q.Set("sort", "begin_at")
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(c.perPage))

		var dtos []matchDTO
		if err := c.getJSON(ctx, "/csgo/matches/"+window, q, &dtos); err != nil {
			return nil, err
		}
		for i := range dtos {
			if m, ok := mapMatch(&dtos[i]); ok {
				out = append(out, m)
			}
		}
		if len(dtos) < c.perPage {
			break
		}
	}
	return out, nil
}

// FetchTournaments retrieves the current tournament window. Filtering
// down to qualifying tournaments is the engine's job.
func (c *Client) FetchTournaments(ctx context.Context) ([]models.Tournament, error) {
	q := url.Values{}
	q.Set("sort", "-begin_at")
	q.Set("per_page", strconv.Itoa(c.perPage))

	var dtos []tournamentDTO
	if err := c.getJSON(ctx, "/csgo/tournaments", q, &dtos); err != nil {
		return nil, fmt.Errorf("failed to fetch tournaments: %w", err)
	}

	tournaments := make([]models.Tournament, 0, len(dtos))
	for i := range dtos {
		tournaments = append(tournaments, mapTournament(&dtos[i]))
	}
	return tournaments, nil
}

// SearchTeams looks up teams by name for the read API's search
// pass-through.
func (c *Client) SearchTeams(ctx context.Context, query string) ([]models.Team, error) {
	q := url.Values{}
	q.Set("search[name]", query)
	q.Set("per_page", strconv.Itoa(c.perPage))

	var dtos []teamDTO
	if err := c.getJSON(ctx, "/csgo/teams", q, &dtos); err != nil {
		return nil, fmt.Errorf("failed to search teams: %w", err)
	}

	teams := make([]models.Team, 0, len(dtos))
	for _, d := range dtos {
		teams = append(teams, models.Team{ID: d.ID, Name: d.Name, Acronym: d.Acronym, ImageURL: d.ImageURL})
	}
	return teams, nil
}

func mapMatch(d *matchDTO) (models.Match, bool) {
	m := models.Match{
		ID:           d.ID,
		Status:       models.MatchStatus(d.Status),
		LeagueName:   d.League.Name,
		SerieName:    d.Serie.FullName,
		TournamentID: d.Tournament.ID,
	}
	if d.BeginAt != nil {
		m.BeginAt = *d.BeginAt
	}
	for _, o := range d.Opponents {
		m.Opponents = append(m.Opponents, models.Opponent{
			TeamID:   o.Opponent.ID,
			Name:     o.Opponent.Name,
			Acronym:  o.Opponent.Acronym,
			ImageURL: o.Opponent.ImageURL,
		})
	}
	// TBD brackets announce matches before both teams are decided;
	// pad so downstream code can rely on a pair.
	for len(m.Opponents) < 2 {
		m.Opponents = append(m.Opponents, models.Opponent{Name: "TBD"})
	}
	for _, r := range d.Results {
		m.Results = append(m.Results, models.Result{TeamID: r.TeamID, Score: r.Score})
	}
	if err := m.Validate(); err != nil {
		return models.Match{}, false
	}
	return m, true
}

func mapTournament(d *tournamentDTO) models.Tournament {
	t := models.Tournament{
		ID:         d.ID,
		Name:       d.Name,
		Tier:       strings.ToLower(d.Tier),
		LeagueName: d.League.Name,
		PrizePool:  parsePrizePool(d.Prize),
	}
	if d.BeginAt != nil {
		t.BeginAt = *d.BeginAt
	}
	if d.EndAt != nil {
		t.EndAt = *d.EndAt
	}
	return t
}

// parsePrizePool extracts the numeric amount from strings like
// "$1,250,000" or "100000 United States Dollar". Returns nil when no
// digits are present.
func parsePrizePool(s string) *int64 {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return nil
	}
	v, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// getJSON performs a GET with linear-backoff retry on network errors,
// 5xx responses, and rate limiting.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path + "?" + query.Encode()

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			lastErr = fmt.Errorf("upstream returned %d", resp.StatusCode)
		} else if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("upstream rejected request: %d", resp.StatusCode)
		} else {
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelayBase * time.Duration(i+1)):
		}
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
