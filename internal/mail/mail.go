// Package mail holds the domain types shared by the outreach transports:
// OAuth scopes, the auth capability injected into them, the error taxonomy,
// and attachment handling.
package mail

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Scope is an OAuth permission granule required by a Gmail operation.
type Scope string

const (
	ScopeSend     Scope = "https://www.googleapis.com/auth/gmail.send"
	ScopeReadonly Scope = "https://www.googleapis.com/auth/gmail.readonly"
	ScopeModify   Scope = "https://www.googleapis.com/auth/gmail.modify"
)

// AuthContext is the capability handed to transports instead of ambient
// session state. Implementations decide where accounts and tokens live.
type AuthContext interface {
	// CurrentAccount returns the signed-in account email, or "" if none.
	CurrentAccount() string

	// HasScope reports whether the current account's credentials were
	// authorized with the given scope.
	HasScope(scope Scope) bool

	// TokenFor returns a bearer access token usable for the given scope.
	// Returns NotAuthorizedError when no credentials exist at all and
	// PermissionDeniedError when credentials exist but lack the scope.
	TokenFor(ctx context.Context, scope Scope) (string, error)
}

// Timeouts match the fixed connect/read/write budget of the transports.
const (
	connectTimeout = 30 * time.Second
	headerTimeout  = 30 * time.Second
	overallTimeout = 60 * time.Second
)

// NewHTTPClient returns an HTTP client with the shared transport budget:
// 30s connect, 30s response-header wait, 60s for the whole exchange.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: overallTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
			ResponseHeaderTimeout: headerTimeout,
		},
	}
}

// NotAuthorizedError means no usable credentials exist for the account.
type NotAuthorizedError struct {
	Scope Scope
}

func (e *NotAuthorizedError) Error() string {
	return "not authorized: sign in with Google and grant Gmail permission"
}

// PermissionDeniedError means credentials exist but were not authorized
// with the scope the operation needs.
type PermissionDeniedError struct {
	Scope Scope
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: missing scope %s", e.Scope)
}

// TransportError is a non-2xx HTTP response from either transport.
type TransportError struct {
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("send failed: HTTP %d", e.Status)
	}
	return fmt.Sprintf("send failed: %d - %s", e.Status, e.Message)
}

// MalformedResponseError is an unexpected JSON shape in an API response.
// Callers treat it as absence of data, not a hard failure, except where
// the response is the sole payload of the operation.
type MalformedResponseError struct {
	What string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %s", e.What)
}
