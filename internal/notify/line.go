package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEndpoint = "https://api.line.me"

// LineClient talks to the LINE Messaging API. Failures are returned to the
// caller; delivery is attempted exactly once per call.
type LineClient struct {
	accessToken string
	endpoint    string
	httpClient  *http.Client
}

// LineOption configures the client.
type LineOption func(*LineClient)

// WithEndpoint overrides the API base URL, used by tests.
func WithEndpoint(endpoint string) LineOption {
	return func(c *LineClient) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) LineOption {
	return func(c *LineClient) {
		c.httpClient = client
	}
}

// NewLineClient returns a client authenticated with the channel access token.
func NewLineClient(accessToken string, opts ...LineOption) *LineClient {
	client := &LineClient{
		accessToken: accessToken,
		endpoint:    defaultEndpoint,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// Reply answers the inbound event identified by replyToken.
func (c *LineClient) Reply(ctx context.Context, replyToken, text string) error {
	return c.post(ctx, "/v2/bot/message/reply", replyRequest{
		ReplyToken: replyToken,
		Messages:   []textMessage{{Type: "text", Text: text}},
	})
}

// Push sends a message to userID without a preceding inbound event.
func (c *LineClient) Push(ctx context.Context, userID, text string) error {
	return c.post(ctx, "/v2/bot/message/push", pushRequest{
		To:       userID,
		Messages: []textMessage{{Type: "text", Text: text}},
	})
}

func (c *LineClient) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notify: %s returned %d: %s", path, resp.StatusCode, detail)
	}
	return nil
}
