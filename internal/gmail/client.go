package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/outreachmail/outreach/internal/mail"
	"github.com/outreachmail/outreach/internal/mime"
)

const baseURL = "https://gmail.googleapis.com/gmail/v1"

// Client implements the Gmail API interface over the REST endpoints.
// Every operation acquires a bearer token for its own scope from the
// injected auth capability; nothing reads ambient session state.
type Client struct {
	httpClient  *http.Client
	auth        mail.AuthContext
	rateLimiter *RateLimiter
	logger      *slog.Logger
	baseURL     string
	userID      string // "me" for authenticated user
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimiter sets a custom rate limiter.
func WithRateLimiter(rl *RateLimiter) ClientOption {
	return func(c *Client) {
		c.rateLimiter = rl
	}
}

// WithHTTPClient overrides the HTTP client (tests point it at a local server).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the API endpoint (tests point it at a local server).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// NewClient creates a Gmail client bound to the given auth capability.
func NewClient(auth mail.AuthContext, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: mail.NewHTTPClient(),
		auth:       auth,
		baseURL:    baseURL,
		userID:     "me",
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.rateLimiter == nil {
		c.rateLimiter = NewRateLimiter(5.0)
	}

	return c
}

// request makes one rate-limited HTTP request with a bearer token for the
// given scope. There are no retries: a failure is returned to the caller,
// who decides whether a fallback transport applies. Rate-limit responses
// still throttle the limiter so subsequent calls back off.
func (c *Client) request(ctx context.Context, op Operation, scope mail.Scope, method, path string, bodyBytes []byte) ([]byte, error) {
	token, err := c.auth.TokenFor(ctx, scope)
	if err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Acquire(ctx, op); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var body io.Reader
	if bodyBytes != nil {
		body = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		c.logger.Debug("rate limited, backing off 30s", "path", path)
		c.rateLimiter.Throttle(30 * time.Second)
	case http.StatusForbidden:
		// Gmail reports quota exhaustion as 403 with a rateLimitExceeded
		// reason rather than 429
		if isRateLimitError(respBody) {
			c.logger.Debug("quota exceeded, backing off 60s", "path", path)
			c.rateLimiter.Throttle(60 * time.Second)
		}
	}

	return nil, &mail.TransportError{
		Status:  resp.StatusCode,
		Message: strings.TrimSpace(string(respBody)),
	}
}

// isRateLimitError checks if a 403 response is actually a rate limit error.
func isRateLimitError(body []byte) bool {
	return bytes.Contains(body, []byte("rateLimitExceeded")) ||
		bytes.Contains(body, []byte("RATE_LIMIT_EXCEEDED")) ||
		bytes.Contains(body, []byte("Quota exceeded")) ||
		bytes.Contains(body, []byte("userRateLimitExceeded"))
}

// Send composes req into a MIME message and delivers it. The returned
// identity has blank fields when the response shape was unexpected; the
// send still counts as delivered.
func (c *Client) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	blob := mime.Compose(c.auth.CurrentAccount(), req.To, req.Subject, req.Body, req.Attachments)

	payload := map[string]string{
		"raw": base64.RawURLEncoding.EncodeToString([]byte(blob)),
	}
	if req.ThreadID != "" {
		payload["threadId"] = req.ThreadID
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal send payload: %w", err)
	}

	path := fmt.Sprintf("/users/%s/messages/send", c.userID)
	data, err := c.request(ctx, OpMessagesSend, mail.ScopeSend, "POST", path, bodyBytes)
	if err != nil {
		return nil, err
	}

	result := decodeSendResponse(data)
	return &result, nil
}

// Reply sends a message into an existing thread. The subject gains a
// "Re:" prefix unless it already carries one.
func (c *Client) Reply(ctx context.Context, threadID, to, subject, body string) error {
	if !strings.HasPrefix(subject, "Re:") {
		subject = "Re: " + subject
	}

	_, err := c.Send(ctx, SendRequest{
		To:       to,
		Subject:  subject,
		Body:     body,
		ThreadID: threadID,
	})
	return err
}

// FetchThreadSummary returns the snippet and message count for a thread.
func (c *Client) FetchThreadSummary(ctx context.Context, threadID string) (*ThreadSummary, error) {
	path := fmt.Sprintf("/users/%s/threads/%s?format=metadata", c.userID, threadID)
	data, err := c.request(ctx, OpThreadsGet, mail.ScopeReadonly, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	return decodeThreadSummary(threadID, data)
}

// FetchThread returns the full thread with per-message headers and bodies.
func (c *Client) FetchThread(ctx context.Context, threadID string) (*ThreadDetail, error) {
	path := fmt.Sprintf("/users/%s/threads/%s?format=full", c.userID, threadID)
	data, err := c.request(ctx, OpThreadsGet, mail.ScopeReadonly, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	return decodeThread(threadID, data)
}

// TrashThread moves a whole thread to trash.
func (c *Client) TrashThread(ctx context.Context, threadID string) error {
	path := fmt.Sprintf("/users/%s/threads/%s/trash", c.userID, threadID)
	_, err := c.request(ctx, OpThreadsTrash, mail.ScopeModify, "POST", path, nil)
	return err
}

// Ensure Client implements API interface.
var _ API = (*Client)(nil)
