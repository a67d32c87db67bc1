package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outreachmail/outreach/internal/mail"
)

var forceReauth bool

var addAccountCmd = &cobra.Command{
	Use:   "add-account <email>",
	Short: "Sign in a Gmail account via OAuth",
	Long: `Sign in a Gmail account by completing the OAuth2 authorization flow.

The account is authorized for send, readonly, and modify scopes in one
consent, and becomes the active account for subsequent commands.

If a token already exists, the command skips authorization. Use --force to
delete the existing token and re-authorize (useful when a token has expired
or been revoked).

Examples:
  outreach add-account you@gmail.com
  outreach add-account you@gmail.com --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]

		oauthMgr, err := newManager()
		if err != nil {
			return err
		}

		if forceReauth && oauthMgr.HasToken(email) {
			fmt.Printf("Removing existing token for %s...\n", email)
			if err := oauthMgr.DeleteToken(email); err != nil {
				return fmt.Errorf("delete existing token: %w", err)
			}
		}

		if oauthMgr.HasToken(email) {
			fmt.Printf("Account %s is already authorized.\n", email)
		} else {
			fmt.Println("Starting browser authorization...")
			if err := oauthMgr.Authorize(cmd.Context(), email); err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}
			fmt.Printf("\nAccount %s authorized successfully!\n", email)
		}

		if err := sessionStore().Put(activeAccountKey, email); err != nil {
			return fmt.Errorf("save active account: %w", err)
		}
		fmt.Printf("Active account set to %s.\n", email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out the active account",
	Long: `Sign out the active account: delete its stored token and clear the
session. The sent-mail ledger is kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email := activeAccount()
		if email == "" {
			fmt.Println("No account is signed in.")
			return nil
		}

		oauthMgr, err := newManager()
		if err != nil {
			return err
		}
		if err := oauthMgr.DeleteToken(email); err != nil {
			return fmt.Errorf("delete token: %w", err)
		}
		if err := sessionStore().Delete(activeAccountKey); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}

		fmt.Printf("Signed out %s.\n", email)
		return nil
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show the active account and its granted scopes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email := activeAccount()
		if email == "" {
			fmt.Println("No account is signed in. Use 'outreach add-account <email>' first.")
			return nil
		}

		session, err := newSession()
		if err != nil {
			return err
		}

		fmt.Printf("Active account: %s\n", email)
		fmt.Printf("  send:     %v\n", session.HasScope(mail.ScopeSend))
		fmt.Printf("  readonly: %v\n", session.HasScope(mail.ScopeReadonly))
		fmt.Printf("  modify:   %v\n", session.HasScope(mail.ScopeModify))
		return nil
	},
}

func init() {
	addAccountCmd.Flags().BoolVar(&forceReauth, "force", false, "Delete existing token and re-authorize (use when token is expired or revoked)")
	rootCmd.AddCommand(addAccountCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(accountCmd)
}
