// Package cache layers the engine's key schema and degraded-mode
// behavior over a kv.Store. Operations against the backend never
// surface an error: writes degrade to logged no-ops and reads to
// "absent", with a process-local copy of the most recent matches blob
// serving as the only fallback while the backend is down.
package cache

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/ilhanBektas/cs2-backend/internal/kv"
	"github.com/ilhanBektas/cs2-backend/internal/logger"
	"github.com/ilhanBektas/cs2-backend/internal/models"
)

// Store keys. Fixed for compatibility with existing deployments.
const (
	keyMatches       = "matches"
	keyTournaments   = "tournaments"
	keyStandings     = "standings:" // + tournament ID
	keySubscriptions = "subscriptions"
	keyMatchStatus   = "match:status"
	keyMatchScore    = "match:score"
	keyReminded      = "match:reminded"
)

// Cache wraps a kv.Store and keeps serving reads while it is down.
type Cache struct {
	store kv.Store

	matchTTL     time.Duration
	snapshotTTL  time.Duration
	standingsTTL time.Duration

	mu           sync.RWMutex
	fallback     []models.Match // last fully merged list, served when the store is down
	lastUpdate   time.Time
	tournaments  []models.Tournament
	tLastUpdate  time.Time
	hasSnapshot  bool
	hasTournSnap bool
}

// Options holds the TTLs applied to the persisted blobs. The matches
// blob uses a long TTL (days) so history is bounded by inactivity, not
// by the short freshness TTLs used elsewhere.
type Options struct {
	MatchTTL     time.Duration
	SnapshotTTL  time.Duration
	StandingsTTL time.Duration
}

// New creates a cache over store.
func New(store kv.Store, opts Options) *Cache {
	if opts.MatchTTL <= 0 {
		opts.MatchTTL = 7 * 24 * time.Hour
	}
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = 24 * time.Hour
	}
	if opts.StandingsTTL <= 0 {
		opts.StandingsTTL = 5 * time.Minute
	}
	return &Cache{
		store:        store,
		matchTTL:     opts.MatchTTL,
		snapshotTTL:  opts.SnapshotTTL,
		standingsTTL: opts.StandingsTTL,
	}
}

// SaveMatches persists the reconciled match list and refreshes the
// in-memory fallback. A backend failure is logged, not returned; the
// fallback still advances so reads stay as fresh as possible.
func (c *Cache) SaveMatches(matches []models.Match) {
	now := time.Now()

	c.mu.Lock()
	c.fallback = matches
	c.lastUpdate = now
	c.hasSnapshot = true
	c.mu.Unlock()

	data, err := json.Marshal(matches)
	if err != nil {
		logger.Error("Failed to marshal matches: %v", err)
		return
	}
	if err := c.store.Set(keyMatches, data, c.matchTTL); err != nil {
		logger.Warn("Store unreachable, matches kept in memory only: %v", err)
	}
}

// Matches returns the reconciled match list, its last-update time, and
// whether any snapshot is available at all. The store copy wins; the
// in-memory fallback covers degraded mode.
func (c *Cache) Matches() ([]models.Match, time.Time, bool) {
	data, err := c.store.Get(keyMatches)
	if err == nil {
		var matches []models.Match
		if jsonErr := json.Unmarshal(data, &matches); jsonErr == nil {
			c.mu.RLock()
			last := c.lastUpdate
			c.mu.RUnlock()
			return matches, last, true
		}
		logger.Error("Corrupt matches blob in store, serving fallback")
	} else if err != kv.ErrNotFound {
		logger.Warn("Store unreachable reading matches: %v", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasSnapshot {
		return nil, time.Time{}, false
	}
	return c.fallback, c.lastUpdate, true
}

// SaveTournaments persists the qualifying tournament list.
func (c *Cache) SaveTournaments(tournaments []models.Tournament) {
	now := time.Now()

	c.mu.Lock()
	c.tournaments = tournaments
	c.tLastUpdate = now
	c.hasTournSnap = true
	c.mu.Unlock()

	data, err := json.Marshal(tournaments)
	if err != nil {
		logger.Error("Failed to marshal tournaments: %v", err)
		return
	}
	if err := c.store.Set(keyTournaments, data, c.snapshotTTL); err != nil {
		logger.Warn("Store unreachable, tournaments kept in memory only: %v", err)
	}
}

// Tournaments returns the cached tournament list. Degraded mode with
// no fallback yields an empty list, which is a valid response.
func (c *Cache) Tournaments() ([]models.Tournament, time.Time) {
	data, err := c.store.Get(keyTournaments)
	if err == nil {
		var tournaments []models.Tournament
		if jsonErr := json.Unmarshal(data, &tournaments); jsonErr == nil {
			c.mu.RLock()
			last := c.tLastUpdate
			c.mu.RUnlock()
			return tournaments, last
		}
	} else if err != kv.ErrNotFound {
		logger.Warn("Store unreachable reading tournaments: %v", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasTournSnap {
		return []models.Tournament{}, time.Time{}
	}
	return c.tournaments, c.tLastUpdate
}

// SaveStandings caches a derived standings table for one tournament
// under a short TTL.
func (c *Cache) SaveStandings(tournamentID int64, entries []models.StandingEntry) {
	data, err := json.Marshal(entries)
	if err != nil {
		logger.Error("Failed to marshal standings: %v", err)
		return
	}
	key := keyStandings + strconv.FormatInt(tournamentID, 10)
	if err := c.store.Set(key, data, c.standingsTTL); err != nil {
		logger.Warn("Store unreachable caching standings: %v", err)
	}
}

// Standings returns the cached standings for a tournament, if present.
func (c *Cache) Standings(tournamentID int64) ([]models.StandingEntry, bool) {
	key := keyStandings + strconv.FormatInt(tournamentID, 10)
	data, err := c.store.Get(key)
	if err != nil {
		if err != kv.ErrNotFound {
			logger.Warn("Store unreachable reading standings: %v", err)
		}
		return nil, false
	}
	var entries []models.StandingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// Subscription hash access. Values are raw records; decoding (and the
// legacy shape handling) belongs to the subscription registry.

func (c *Cache) SetSubscription(token string, record []byte) bool {
	if err := c.store.HSet(keySubscriptions, token, record); err != nil {
		logger.Warn("Store unreachable writing subscription: %v", err)
		return false
	}
	return true
}

func (c *Cache) DeleteSubscription(token string) {
	if err := c.store.HDel(keySubscriptions, token); err != nil {
		logger.Warn("Store unreachable deleting subscription: %v", err)
	}
}

func (c *Cache) Subscriptions() map[string][]byte {
	records, err := c.store.HGetAll(keySubscriptions)
	if err != nil {
		logger.Warn("Store unreachable listing subscriptions: %v", err)
		return map[string][]byte{}
	}
	return records
}

// Detector markers: last-seen status, last-seen score string, and the
// reminder-sent set, all keyed by match ID.

func (c *Cache) MatchStatus(matchID int64) (models.MatchStatus, bool) {
	v, err := c.store.HGet(keyMatchStatus, strconv.FormatInt(matchID, 10))
	if err != nil {
		if err != kv.ErrNotFound {
			logger.Warn("Store unreachable reading status marker: %v", err)
		}
		return "", false
	}
	return models.MatchStatus(v), true
}

func (c *Cache) SetMatchStatus(matchID int64, status models.MatchStatus) {
	if err := c.store.HSet(keyMatchStatus, strconv.FormatInt(matchID, 10), []byte(status)); err != nil {
		logger.Warn("Store unreachable writing status marker: %v", err)
	}
}

func (c *Cache) MatchScore(matchID int64) (string, bool) {
	v, err := c.store.HGet(keyMatchScore, strconv.FormatInt(matchID, 10))
	if err != nil {
		if err != kv.ErrNotFound {
			logger.Warn("Store unreachable reading score marker: %v", err)
		}
		return "", false
	}
	return string(v), true
}

func (c *Cache) SetMatchScore(matchID int64, score string) {
	if err := c.store.HSet(keyMatchScore, strconv.FormatInt(matchID, 10), []byte(score)); err != nil {
		logger.Warn("Store unreachable writing score marker: %v", err)
	}
}

func (c *Cache) ReminderSent(matchID int64) bool {
	ok, err := c.store.SIsMember(keyReminded, strconv.FormatInt(matchID, 10))
	if err != nil {
		logger.Warn("Store unreachable reading reminder marker: %v", err)
		return false
	}
	return ok
}

func (c *Cache) MarkReminderSent(matchID int64) {
	if err := c.store.SAdd(keyReminded, strconv.FormatInt(matchID, 10)); err != nil {
		logger.Warn("Store unreachable writing reminder marker: %v", err)
	}
}
