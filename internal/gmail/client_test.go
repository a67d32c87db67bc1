package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/outreachmail/outreach/internal/mail"
)

// fakeAuth is a canned AuthContext for transport tests.
type fakeAuth struct {
	account string
	tokens  map[mail.Scope]string
	err     error

	requested []mail.Scope
}

func (f *fakeAuth) CurrentAccount() string { return f.account }

func (f *fakeAuth) HasScope(scope mail.Scope) bool {
	_, ok := f.tokens[scope]
	return ok
}

func (f *fakeAuth) TokenFor(ctx context.Context, scope mail.Scope) (string, error) {
	f.requested = append(f.requested, scope)
	if f.err != nil {
		return "", f.err
	}
	tok, ok := f.tokens[scope]
	if !ok {
		return "", &mail.PermissionDeniedError{Scope: scope}
	}
	return tok, nil
}

func allScopes(account string) *fakeAuth {
	return &fakeAuth{
		account: account,
		tokens: map[mail.Scope]string{
			mail.ScopeSend:     "tok-send",
			mail.ScopeReadonly: "tok-read",
			mail.ScopeModify:   "tok-modify",
		},
	}
}

// recordedRequest captures what the test server saw.
type recordedRequest struct {
	method string
	path   string
	query  string
	auth   string
	body   []byte
}

// newTestClient wires a Client to an httptest server returning the given
// status and body, and records each request.
func newTestClient(t *testing.T, auth mail.AuthContext, status int, respBody string) (*Client, *[]recordedRequest) {
	t.Helper()

	var seen []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			body:   body,
		})
		w.WriteHeader(status)
		io.WriteString(w, respBody)
	}))
	t.Cleanup(server.Close)

	c := NewClient(auth,
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
	)
	return c, &seen
}

func TestClient_Send(t *testing.T) {
	auth := allScopes("me@example.com")
	c, seen := newTestClient(t, auth, 200, `{"id":"msg_1","threadId":"thread_1"}`)

	result, err := c.Send(context.Background(), SendRequest{
		To:      "press@example.com",
		Subject: "Inquiry about Skims",
		Body:    "Hello",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.ID != "msg_1" || result.ThreadID != "thread_1" {
		t.Errorf("Send() result = %+v, want msg_1/thread_1", result)
	}

	req := (*seen)[0]
	if req.method != "POST" || req.path != "/users/me/messages/send" {
		t.Errorf("request = %s %s, want POST /users/me/messages/send", req.method, req.path)
	}
	if req.auth != "Bearer tok-send" {
		t.Errorf("Authorization = %q, want the send-scope token", req.auth)
	}
	if len(auth.requested) != 1 || auth.requested[0] != mail.ScopeSend {
		t.Errorf("requested scopes = %v, want [gmail.send]", auth.requested)
	}

	var payload map[string]string
	if err := json.Unmarshal(req.body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if _, ok := payload["threadId"]; ok {
		t.Error("plain send should not carry a threadId")
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload["raw"])
	if err != nil {
		t.Fatalf("raw field is not unpadded base64url: %v", err)
	}
	blob := string(raw)
	for _, want := range []string{
		"From: me@example.com",
		"To: press@example.com",
		"Subject: Inquiry about Skims",
		"Content-Type: text/plain; charset=UTF-8",
	} {
		if !strings.Contains(blob, want) {
			t.Errorf("composed message missing %q:\n%s", want, blob)
		}
	}
}

func TestClient_Reply_AddsRePrefix(t *testing.T) {
	c, seen := newTestClient(t, allScopes("me@example.com"), 200, `{"id":"m2","threadId":"t1"}`)

	if err := c.Reply(context.Background(), "t1", "press@example.com", "Inquiry about Skims", "Following up"); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	var payload map[string]string
	if err := json.Unmarshal((*seen)[0].body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["threadId"] != "t1" {
		t.Errorf("threadId = %q, want t1", payload["threadId"])
	}
	raw, _ := base64.RawURLEncoding.DecodeString(payload["raw"])
	if !strings.Contains(string(raw), "Subject: Re: Inquiry about Skims") {
		t.Errorf("reply subject not normalized:\n%s", raw)
	}
}

func TestClient_Reply_KeepsExistingRePrefix(t *testing.T) {
	c, seen := newTestClient(t, allScopes("me@example.com"), 200, `{}`)

	if err := c.Reply(context.Background(), "t1", "press@example.com", "Re: Inquiry", "More"); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	var payload map[string]string
	json.Unmarshal((*seen)[0].body, &payload)
	raw, _ := base64.RawURLEncoding.DecodeString(payload["raw"])
	if strings.Contains(string(raw), "Re: Re:") {
		t.Errorf("reply subject double-prefixed:\n%s", raw)
	}
}

func TestClient_FetchThreadSummary(t *testing.T) {
	auth := allScopes("me@example.com")
	c, seen := newTestClient(t, auth, 200, `{"id":"t1","snippet":"latest","messages":[{"id":"m1"},{"id":"m2"}]}`)

	got, err := c.FetchThreadSummary(context.Background(), "t1")
	if err != nil {
		t.Fatalf("FetchThreadSummary() error = %v", err)
	}
	if got.LastSnippet != "latest" || got.TotalMessages != 2 {
		t.Errorf("summary = %+v, want latest/2", got)
	}

	req := (*seen)[0]
	if req.path != "/users/me/threads/t1" || req.query != "format=metadata" {
		t.Errorf("request = %s?%s, want /users/me/threads/t1?format=metadata", req.path, req.query)
	}
	if req.auth != "Bearer tok-read" {
		t.Errorf("Authorization = %q, want the readonly-scope token", req.auth)
	}
}

func TestClient_TrashThread(t *testing.T) {
	auth := allScopes("me@example.com")
	c, seen := newTestClient(t, auth, 200, `{}`)

	if err := c.TrashThread(context.Background(), "t1"); err != nil {
		t.Fatalf("TrashThread() error = %v", err)
	}

	req := (*seen)[0]
	if req.method != "POST" || req.path != "/users/me/threads/t1/trash" {
		t.Errorf("request = %s %s, want POST /users/me/threads/t1/trash", req.method, req.path)
	}
	if req.auth != "Bearer tok-modify" {
		t.Errorf("Authorization = %q, want the modify-scope token", req.auth)
	}
}

func TestClient_HTTPErrorBecomesTransportError(t *testing.T) {
	c, _ := newTestClient(t, allScopes("me@example.com"), 500, "upstream broke")

	_, err := c.Send(context.Background(), SendRequest{To: "x@example.com", Subject: "s", Body: "b"})

	var te *mail.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Send() error = %v, want TransportError", err)
	}
	if te.Status != 500 || te.Message != "upstream broke" {
		t.Errorf("TransportError = %+v, want 500/upstream broke", te)
	}
}

// Exactly one HTTP attempt per operation, even on failure.
func TestClient_NoRetries(t *testing.T) {
	c, seen := newTestClient(t, allScopes("me@example.com"), 503, "unavailable")

	_, _ = c.Send(context.Background(), SendRequest{To: "x@example.com", Subject: "s", Body: "b"})

	if len(*seen) != 1 {
		t.Errorf("request count = %d, want 1 (no retries)", len(*seen))
	}
}

func TestClient_AuthErrorShortCircuits(t *testing.T) {
	auth := &fakeAuth{err: &mail.NotAuthorizedError{Scope: mail.ScopeSend}}
	c, seen := newTestClient(t, auth, 200, `{}`)

	_, err := c.Send(context.Background(), SendRequest{To: "x@example.com", Subject: "s", Body: "b"})

	var nae *mail.NotAuthorizedError
	if !errors.As(err, &nae) {
		t.Fatalf("Send() error = %v, want NotAuthorizedError", err)
	}
	if len(*seen) != 0 {
		t.Errorf("request count = %d, want 0 when auth fails", len(*seen))
	}
}

func TestClient_MissingScope(t *testing.T) {
	auth := &fakeAuth{
		account: "me@example.com",
		tokens:  map[mail.Scope]string{mail.ScopeSend: "tok-send"},
	}
	c, _ := newTestClient(t, auth, 200, `{}`)

	_, err := c.FetchThreadSummary(context.Background(), "t1")

	var pde *mail.PermissionDeniedError
	if !errors.As(err, &pde) {
		t.Fatalf("FetchThreadSummary() error = %v, want PermissionDeniedError", err)
	}
	if pde.Scope != mail.ScopeReadonly {
		t.Errorf("missing scope = %v, want readonly", pde.Scope)
	}
}

func TestClient_RateLimitResponseThrottles(t *testing.T) {
	c, _ := newTestClient(t, allScopes("me@example.com"), 429, "slow down")

	_, err := c.Send(context.Background(), SendRequest{To: "x@example.com", Subject: "s", Body: "b"})

	var te *mail.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Send() error = %v, want TransportError", err)
	}
	// The limiter drained; the next call would wait, not fire immediately.
	if c.rateLimiter.TryAcquire(OpThreadsGet) {
		t.Error("limiter should be throttled after a 429")
	}
}

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"reason", `{"error":{"errors":[{"reason":"rateLimitExceeded"}]}}`, true},
		{"upper", `{"error":{"details":[{"reason":"RATE_LIMIT_EXCEEDED"}]}}`, true},
		{"quota message", `{"error":{"message":"Quota exceeded for quota metric 'Queries'"}}`, true},
		{"user rate", `{"error":{"errors":[{"reason":"userRateLimitExceeded"}]}}`, true},
		{"forbidden", `{"error":{"errors":[{"reason":"forbidden"}]}}`, false},
		{"empty", ``, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRateLimitError([]byte(tc.body)); got != tc.want {
				t.Errorf("isRateLimitError() = %v, want %v", got, tc.want)
			}
		})
	}
}
