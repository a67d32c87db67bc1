package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/outreachmail/outreach/internal/brands"
	"github.com/outreachmail/outreach/internal/config"
	"github.com/outreachmail/outreach/internal/gmail"
	"github.com/outreachmail/outreach/internal/inbox"
	"github.com/outreachmail/outreach/internal/ledger"
	"github.com/outreachmail/outreach/internal/mailer"
	"github.com/outreachmail/outreach/internal/oauth"
	"github.com/outreachmail/outreach/internal/prefs"
	"github.com/outreachmail/outreach/internal/webhook"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Brand outreach mail tool",
	Long: `outreach sends brand outreach email through Gmail with a generic
webhook fallback, keeps a local ledger of what went out, and reconciles
that ledger against live Gmail thread state.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if err := cfg.EnsureHomeDir(); err != nil {
			return fmt.Errorf("create data directory %s: %w", cfg.HomeDir, err)
		}

		return nil
	},
}

// Execute runs the root command with a background context.
// Prefer ExecuteContext for signal-aware execution.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context,
// enabling graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

const activeAccountKey = "account"

// sessionStore holds CLI session state, currently just the active account.
func sessionStore() *prefs.Store {
	return prefs.Open(cfg.PrefsDir(), "session")
}

// activeAccount returns the signed-in account email, or "".
func activeAccount() string {
	return sessionStore().Get(activeAccountKey)
}

// newManager builds the OAuth manager from the configured client secrets.
func newManager() (*oauth.Manager, error) {
	if cfg.OAuth.ClientSecrets == "" {
		return nil, errOAuthNotConfigured()
	}
	mgr, err := oauth.NewManager(cfg.OAuth.ClientSecrets, cfg.TokensDir(), logger)
	if err != nil {
		return nil, wrapOAuthError(err)
	}
	return mgr, nil
}

// newSession binds the OAuth manager to the active account. With no account
// signed in the session still works; operations fail with a sign-in error.
func newSession() (*oauth.Session, error) {
	mgr, err := newManager()
	if err != nil {
		return nil, err
	}
	return oauth.NewSession(mgr, activeAccount()), nil
}

// openLedger returns the sent-mail ledger under the prefs directory.
func openLedger() *ledger.Ledger {
	return ledger.New(prefs.Open(cfg.PrefsDir(), "sent_mail"))
}

// newGmailClient builds the Gmail transport for the given session.
func newGmailClient(session *oauth.Session) *gmail.Client {
	return gmail.NewClient(session,
		gmail.WithLogger(logger),
		gmail.WithRateLimiter(gmail.NewRateLimiter(cfg.Gmail.RateLimitQPS)),
	)
}

// newMailer wires the full send path: Gmail first, webhook fallback second,
// ledger on success.
func newMailer(session *oauth.Session) *mailer.Service {
	fallback := webhook.NewSender(cfg.Fallback.URL, webhook.WithLogger(logger))
	return mailer.New(newGmailClient(session), fallback, openLedger(),
		mailer.WithLogger(logger))
}

// newDirectory returns the remote brand directory client, or nil when none
// is configured.
func newDirectory() *brands.Directory {
	if cfg.Brands.URL == "" {
		return nil
	}
	return brands.NewDirectory(cfg.Brands.URL, cfg.Brands.AnonKey,
		brands.WithLogger(logger))
}

// newInboxBuilder wires the inbox reconciler for the given session.
func newInboxBuilder(session *oauth.Session) *inbox.Builder {
	var directory inbox.DirectorySource
	if d := newDirectory(); d != nil {
		directory = d
	}
	return inbox.NewBuilder(openLedger(), directory, newGmailClient(session), session,
		inbox.WithLogger(logger))
}

// errOAuthNotConfigured returns a helpful error when OAuth client secrets
// are missing.
func errOAuthNotConfigured() error {
	return fmt.Errorf(`OAuth client secrets not configured.

To use outreach, you need a Google Cloud OAuth credential:
  1. Create an OAuth desktop client in the Google Cloud console
  2. Download the client_secret.json file
  3. Create or edit %s:
       [oauth]
       client_secrets = "/path/to/client_secret.json"`, cfg.ConfigFilePath())
}

// wrapOAuthError wraps a client-secrets error with setup instructions if the
// root cause is a missing or unreadable secrets file.
func wrapOAuthError(err error) error {
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("OAuth client secrets file not accessible: %w", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.outreach/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
