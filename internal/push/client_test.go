package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhanBektas/cs2-backend/internal/notify"
)

func TestSendParsesPerTokenResults(t *testing.T) {
	var gotAuth string
	var gotReq sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": 1,
			"failure": 2,
			"results": []map[string]string{
				{"message_id": "m1"},
				{"error": "NotRegistered"},
				{"error": "Unavailable"},
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "secret", time.Second, 1, time.Millisecond)
	require.NoError(t, err)

	res, err := c.Send(context.Background(), notify.Message{
		Title:  "Match Started",
		Body:   "NaVi vs FaZe is live now!",
		Data:   map[string]string{"type": "match_starting"},
		Tokens: []string{"tok-ok", "tok-dead", "tok-flaky"},
	})
	require.NoError(t, err)

	assert.Equal(t, "key=secret", gotAuth)
	assert.Equal(t, []string{"tok-ok", "tok-dead", "tok-flaky"}, gotReq.RegistrationIDs)
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 2, res.Failure)
	// Only permanently dead tokens are flagged for pruning.
	assert.Equal(t, []string{"tok-dead"}, res.InvalidTokens)
}

func TestSendRetriesOn5xx(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": 1, "results": []map[string]string{{"message_id": "m"}}})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "secret", time.Second, 3, time.Millisecond)
	require.NoError(t, err)

	res, err := c.Send(context.Background(), notify.Message{Tokens: []string{"tok"}})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, res.Success)
}

func TestSendGivesUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "secret", time.Second, 2, time.Millisecond)
	require.NoError(t, err)

	_, err = c.Send(context.Background(), notify.Message{Tokens: []string{"tok"}})
	assert.Error(t, err)
}

func TestNewClientRequiresServerKey(t *testing.T) {
	_, err := NewClient("", "", time.Second, 3, time.Second)
	assert.Error(t, err)
}
