package models

import "errors"

// DefaultLanguage is used when a subscriber did not pick a language
// and when no template exists for the one they picked.
const DefaultLanguage = "en"

// Subscription maps a delivery token to the subscriber's favorite
// teams and preferred language. The token is the hash field key, so
// it is not part of the stored value.
type Subscription struct {
	Token         string   `json:"-"`
	FavoriteTeams []string `json:"favorite_teams"`
	Language      string   `json:"language"`
}

// Validate checks registration constraints.
func (s *Subscription) Validate() error {
	if s.Token == "" {
		return errors.New("token must not be empty")
	}
	if len(s.FavoriteTeams) == 0 {
		return errors.New("favorite teams must not be empty")
	}
	return nil
}
