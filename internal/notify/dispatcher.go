// Package notify turns detected match events into localized push
// notifications and prunes tokens the transport rejects.
package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ilhanBektas/cs2-backend/internal/logger"
	"github.com/ilhanBektas/cs2-backend/internal/metrics"
	"github.com/ilhanBektas/cs2-backend/internal/models"
	"github.com/ilhanBektas/cs2-backend/internal/subscription"
)

// Message is one batch send: a rendered notification plus the
// structured data payload, addressed to a token list.
type Message struct {
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data"`
	Tokens []string          `json:"tokens"`
}

// Result is the transport's per-batch outcome. InvalidTokens lists
// tokens the transport reports as permanently dead; deleting their
// subscriptions is the only automatic cleanup path for stale tokens.
type Result struct {
	Success       int
	Failure       int
	InvalidTokens []string
}

// Sender is the push transport capability.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// Dispatcher resolves interested subscribers, renders per-language
// messages, and sends them.
type Dispatcher struct {
	registry *subscription.Registry
	sender   Sender
}

// NewDispatcher creates a dispatcher over the given registry and
// transport.
func NewDispatcher(registry *subscription.Registry, sender Sender) *Dispatcher {
	return &Dispatcher{registry: registry, sender: sender}
}

// Dispatch sends one event to every interested subscriber in their
// language. A transport failure for one language group is returned
// after the remaining groups are attempted; zero interested tokens is
// a silent no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, ev models.Event) error {
	groups := d.registry.ResolveInterested(ev.Teams[:])
	if len(groups) == 0 {
		return nil
	}

	data := eventData(ev)

	var lastErr error
	for language, tokens := range groups {
		if len(tokens) == 0 {
			continue
		}
		title, body := renderMessage(language, ev)
		res, err := d.sender.Send(ctx, Message{
			Title:  title,
			Body:   body,
			Data:   data,
			Tokens: tokens,
		})
		if err != nil {
			logger.Error("Failed to send %s notification (%s, %d tokens): %v",
				ev.Kind, language, len(tokens), err)
			lastErr = fmt.Errorf("send %s/%s: %w", ev.Kind, language, err)
			continue
		}
		metrics.NotificationsSent.Add(float64(res.Success))
		for _, token := range res.InvalidTokens {
			d.registry.Unregister(token)
			metrics.TokensPruned.Inc()
		}
		logger.Info("Sent %s notification to %d/%d tokens (%s), pruned %d",
			ev.Kind, res.Success, len(tokens), language, len(res.InvalidTokens))
	}
	return lastErr
}

func eventData(ev models.Event) map[string]string {
	data := map[string]string{
		"type":     string(ev.Kind),
		"match_id": strconv.FormatInt(ev.MatchID, 10),
		"team1":    ev.Teams[0],
		"team2":    ev.Teams[1],
	}
	if ev.Score != "" {
		data["score"] = ev.Score
	}
	if ev.WinnerName != "" {
		data["winner"] = ev.WinnerName
	}
	return data
}
