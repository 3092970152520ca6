// Package subscription maps delivery tokens to favorite-team lists
// and resolves which tokens care about a given match.
package subscription

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ilhanBektas/cs2-backend/internal/cache"
	"github.com/ilhanBektas/cs2-backend/internal/logger"
	"github.com/ilhanBektas/cs2-backend/internal/models"
)

// ErrInvalidArgument marks registrations rejected synchronously:
// missing token or empty favorites. Never retried.
var ErrInvalidArgument = errors.New("subscription: invalid argument")

// Registry stores subscriptions in the cache's subscription hash.
type Registry struct {
	cache   *cache.Cache
	aliases *Aliases
}

// NewRegistry creates a registry over the shared cache.
func NewRegistry(c *cache.Cache, aliases *Aliases) *Registry {
	if aliases == nil {
		aliases = NewAliases(nil)
	}
	return &Registry{cache: c, aliases: aliases}
}

// Register creates or overwrites the subscription for token.
func (r *Registry) Register(token string, favoriteTeams []string, language string) error {
	if language == "" {
		language = models.DefaultLanguage
	}
	sub := models.Subscription{Token: token, FavoriteTeams: favoriteTeams, Language: language}
	if err := sub.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	record, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to encode subscription: %w", err)
	}
	r.cache.SetSubscription(token, record)
	return nil
}

// Unregister removes the subscription for token. Removing an absent
// token is not an error.
func (r *Registry) Unregister(token string) {
	r.cache.DeleteSubscription(token)
}

// MatchesTeam reports whether a stored favorite name refers to the
// candidate team, directly or through the alias table.
func (r *Registry) MatchesTeam(favorite, candidate string) bool {
	return r.aliases.Match(favorite, candidate)
}

// ResolveInterested returns the tokens whose favorites match any of
// teamNames, grouped by subscriber language. Malformed stored records
// are skipped, never fatal.
func (r *Registry) ResolveInterested(teamNames []string) map[string][]string {
	byLanguage := make(map[string][]string)
	for token, record := range r.cache.Subscriptions() {
		sub, err := decodeRecord(token, record)
		if err != nil {
			logger.Warn("Skipping malformed subscription for token %s: %v", token, err)
			continue
		}
		if !r.interested(sub, teamNames) {
			continue
		}
		lang := sub.Language
		if lang == "" {
			lang = models.DefaultLanguage
		}
		byLanguage[lang] = append(byLanguage[lang], token)
	}
	return byLanguage
}

func (r *Registry) interested(sub models.Subscription, teamNames []string) bool {
	for _, favorite := range sub.FavoriteTeams {
		for _, name := range teamNames {
			if r.aliases.Match(favorite, name) {
				return true
			}
		}
	}
	return false
}

// decodeRecord accepts both the canonical object shape and the legacy
// bare-array shape written before languages existed. The legacy form
// is upgraded to the canonical struct with the default language at
// read time; the two shapes never travel past this point.
func decodeRecord(token string, record []byte) (models.Subscription, error) {
	var sub models.Subscription
	if err := json.Unmarshal(record, &sub); err == nil && len(sub.FavoriteTeams) > 0 {
		sub.Token = token
		return sub, nil
	}

	var legacy []string
	if err := json.Unmarshal(record, &legacy); err == nil && len(legacy) > 0 {
		return models.Subscription{
			Token:         token,
			FavoriteTeams: legacy,
			Language:      models.DefaultLanguage,
		}, nil
	}

	return models.Subscription{}, fmt.Errorf("unrecognized record shape: %s", record)
}
