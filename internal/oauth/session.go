package oauth

import (
	"context"

	"github.com/outreachmail/outreach/internal/mail"
)

// Session binds a Manager to the currently signed-in account and exposes
// it as the auth capability the transports take. A zero account behaves as
// signed-out: every token request fails with NotAuthorizedError.
type Session struct {
	manager *Manager
	account string
}

// NewSession returns a session for the given account email.
func NewSession(manager *Manager, account string) *Session {
	return &Session{manager: manager, account: account}
}

// CurrentAccount returns the signed-in account email, or "".
func (s *Session) CurrentAccount() string {
	return s.account
}

// HasScope reports whether the stored credentials carry the scope.
func (s *Session) HasScope(scope mail.Scope) bool {
	if s.account == "" {
		return false
	}
	return s.manager.HasScope(s.account, scope)
}

// TokenFor returns a bearer token for the scope, classifying failures per
// the transport error taxonomy.
func (s *Session) TokenFor(ctx context.Context, scope mail.Scope) (string, error) {
	if s.account == "" || !s.manager.HasToken(s.account) {
		return "", &mail.NotAuthorizedError{Scope: scope}
	}
	if !s.manager.HasScope(s.account, scope) {
		return "", &mail.PermissionDeniedError{Scope: scope}
	}

	ts, err := s.manager.TokenSource(ctx, s.account)
	if err != nil {
		return "", &mail.NotAuthorizedError{Scope: scope}
	}
	token, err := ts.Token()
	if err != nil {
		return "", &mail.NotAuthorizedError{Scope: scope}
	}
	return token.AccessToken, nil
}

var _ mail.AuthContext = (*Session)(nil)
