package oauth

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/outreachmail/outreach/internal/mail"
	"github.com/outreachmail/outreach/internal/testutil"
)

const testClientSecrets = `{
	"installed": {
		"client_id": "test-client-id.apps.googleusercontent.com",
		"client_secret": "test-secret",
		"auth_uri": "https://accounts.google.com/o/oauth2/auth",
		"token_uri": "https://oauth2.googleapis.com/token",
		"redirect_uris": ["http://localhost"]
	}
}`

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()

	secretsPath := filepath.Join(dir, "client_secret.json")
	testutil.MustNoErr(t, writeFile(secretsPath, testClientSecrets), "write client secrets")

	m, err := NewManager(secretsPath, filepath.Join(dir, "tokens"), slog.Default())
	testutil.MustNoErr(t, err, "create manager")
	return m
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}

func validToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		Expiry:       time.Now().Add(time.Hour),
	}
}

func TestNewManager_MissingSecrets(t *testing.T) {
	_, err := NewManager(filepath.Join(t.TempDir(), "absent.json"), t.TempDir(), slog.Default())
	if err == nil {
		t.Fatal("NewManager() with missing secrets should fail")
	}
}

func TestNewManager_BadSecrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	testutil.MustNoErr(t, writeFile(path, "{}"), "write secrets")

	if _, err := NewManager(path, dir, slog.Default()); err == nil {
		t.Fatal("NewManager() with empty secrets should fail")
	}
}

func TestManager_SaveAndLoadToken(t *testing.T) {
	m := newTestManager(t)

	if m.HasToken("me@example.com") {
		t.Error("HasToken() before save = true, want false")
	}

	testutil.MustNoErr(t, m.saveToken("me@example.com", validToken()), "save token")

	if !m.HasToken("me@example.com") {
		t.Error("HasToken() after save = false, want true")
	}

	tf, err := m.loadTokenFile("me@example.com")
	testutil.MustNoErr(t, err, "load token")
	if tf.AccessToken != "access-token" {
		t.Errorf("AccessToken = %q", tf.AccessToken)
	}
	// Stored tokens remember the scopes they were authorized with.
	if len(tf.Scopes) != len(Scopes) {
		t.Errorf("stored scopes = %v, want all of %v", tf.Scopes, Scopes)
	}
}

func TestManager_HasScope(t *testing.T) {
	m := newTestManager(t)

	if m.HasScope("me@example.com", mail.ScopeSend) {
		t.Error("HasScope() without a token = true, want false")
	}

	testutil.MustNoErr(t, m.saveToken("me@example.com", validToken()), "save token")

	for _, scope := range []mail.Scope{mail.ScopeSend, mail.ScopeReadonly, mail.ScopeModify} {
		if !m.HasScope("me@example.com", scope) {
			t.Errorf("HasScope(%s) = false, want true", scope)
		}
	}
	if m.HasScope("me@example.com", "https://www.googleapis.com/auth/drive") {
		t.Error("HasScope() for an unrequested scope = true, want false")
	}
}

func TestManager_DeleteToken(t *testing.T) {
	m := newTestManager(t)
	testutil.MustNoErr(t, m.saveToken("me@example.com", validToken()), "save token")

	testutil.MustNoErr(t, m.DeleteToken("me@example.com"), "delete token")
	if m.HasToken("me@example.com") {
		t.Error("HasToken() after delete = true, want false")
	}

	// Deleting again is a no-op.
	testutil.MustNoErr(t, m.DeleteToken("me@example.com"), "delete absent token")
}

func TestManager_TokenPathSanitized(t *testing.T) {
	m := newTestManager(t)

	tests := []string{
		"../../etc/passwd",
		"a/b@example.com",
		"back\\slash@example.com",
	}
	for _, email := range tests {
		path := m.tokenPath(email)
		if !strings.HasPrefix(filepath.Clean(path), filepath.Clean(m.tokensDir)) {
			t.Errorf("tokenPath(%q) = %q escapes the tokens dir", email, path)
		}
	}
}
