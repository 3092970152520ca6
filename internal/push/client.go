// Package push implements the notification transport over the FCM
// legacy HTTP API.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ilhanBektas/cs2-backend/internal/notify"
)

const defaultEndpoint = "https://fcm.googleapis.com/fcm/send"

// Client sends batched push notifications.
type Client struct {
	endpoint       string
	serverKey      string
	httpClient     *http.Client
	maxRetries     int
	retryDelayBase time.Duration
}

var _ notify.Sender = (*Client)(nil)

// NewClient creates a push client. An empty endpoint uses the FCM
// default; timeout bounds each HTTP attempt.
func NewClient(endpoint, serverKey string, timeout time.Duration, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	if serverKey == "" {
		return nil, fmt.Errorf("push server key is required")
	}
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Client{
		endpoint:       endpoint,
		serverKey:      serverKey,
		httpClient:     &http.Client{Timeout: timeout},
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

type sendRequest struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    notificationBody  `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type notificationBody struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type sendResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// Errors the transport documents as unrecoverable for a token.
func permanentTokenError(code string) bool {
	return code == "NotRegistered" || code == "InvalidRegistration" || code == "MismatchSenderId"
}

// Send delivers one message batch and reports per-token results.
// Transient transport errors are retried with linear backoff.
func (c *Client) Send(ctx context.Context, msg notify.Message) (notify.Result, error) {
	payload, err := json.Marshal(sendRequest{
		RegistrationIDs: msg.Tokens,
		Notification:    notificationBody{Title: msg.Title, Body: msg.Body},
		Data:            msg.Data,
	})
	if err != nil {
		return notify.Result{}, fmt.Errorf("failed to encode push payload: %w", err)
	}

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		resp, err := c.doSend(ctx, payload)
		if err == nil {
			return c.parseResponse(resp, msg.Tokens)
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return notify.Result{}, ctx.Err()
		case <-time.After(c.retryDelayBase * time.Duration(i+1)):
		}
	}
	return notify.Result{}, fmt.Errorf("push send failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) doSend(ctx context.Context, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, fmt.Errorf("push endpoint returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("push endpoint rejected request: %d", resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) parseResponse(resp *http.Response, tokens []string) (notify.Result, error) {
	defer resp.Body.Close()
	var body sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return notify.Result{}, fmt.Errorf("failed to decode push response: %w", err)
	}
	res := notify.Result{Success: body.Success, Failure: body.Failure}
	for i, r := range body.Results {
		if i >= len(tokens) {
			break
		}
		if permanentTokenError(r.Error) {
			res.InvalidTokens = append(res.InvalidTokens, tokens[i])
		}
	}
	return res, nil
}
