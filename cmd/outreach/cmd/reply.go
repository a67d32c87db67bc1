package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	replyTo       string
	replySubject  string
	replyBody     string
	replyBodyFile string
)

var replyCmd = &cobra.Command{
	Use:   "reply <thread-id>",
	Short: "Reply within an existing thread",
	Long: `Send a reply into an existing Gmail thread. The subject gains a "Re:"
prefix unless it already carries one. Replies are not recorded in the
ledger; the thread already has an entry from the original send.

Examples:
  outreach reply 18c2f4a9b3d1e07f --to press@example.com --subject "Inquiry about Skims" --body "Following up."`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threadID := args[0]

		body := replyBody
		if replyBodyFile != "" {
			if body != "" {
				return fmt.Errorf("--body and --body-file are mutually exclusive")
			}
			data, err := os.ReadFile(replyBodyFile)
			if err != nil {
				return fmt.Errorf("read body file: %w", err)
			}
			body = string(data)
		}
		if replyTo == "" || replySubject == "" || body == "" {
			return fmt.Errorf("--to, --subject, and a body are required")
		}

		session, err := newSession()
		if err != nil {
			return err
		}

		if err := newMailer(session).Reply(cmd.Context(), threadID, replyTo, replySubject, body); err != nil {
			return err
		}

		fmt.Printf("Replied in thread %s.\n", threadID)
		return nil
	},
}

func init() {
	replyCmd.Flags().StringVar(&replyTo, "to", "", "Recipient email address")
	replyCmd.Flags().StringVar(&replySubject, "subject", "", "Subject line (Re: added if missing)")
	replyCmd.Flags().StringVar(&replyBody, "body", "", "Message body")
	replyCmd.Flags().StringVar(&replyBodyFile, "body-file", "", "Read the message body from a file")
	rootCmd.AddCommand(replyCmd)
}
