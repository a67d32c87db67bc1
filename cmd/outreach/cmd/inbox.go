package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/outreachmail/outreach/internal/inbox"
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Show sent outreach threads",
	Long: `Show one row per sent message, newest first, reconciled against live
Gmail thread state. Rows gain a preview snippet and message count when the
account holds read scope; fallback-only sends show with no thread.

Examples:
  outreach inbox`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}

		rows, err := newInboxBuilder(session).Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load inbox: %w", err)
		}

		if len(rows) == 0 {
			fmt.Println("No sent mail yet. Use 'outreach send' to start.")
			return nil
		}

		printInbox(rows)
		return nil
	},
}

func printInbox(rows []inbox.Row) {
	title := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)

	for _, row := range rows {
		title.Print(row.Title)
		if row.Count > 1 {
			fmt.Printf(" (%d)", row.Count)
		}
		fmt.Println()

		if row.Preview != "" {
			fmt.Printf("  %s\n", row.Preview)
		}
		if row.ThreadID != "" {
			dim.Printf("  thread %s", row.ThreadID)
		} else {
			dim.Print("  local only")
		}
		dim.Printf("  record %s\n", row.RecordID)
		fmt.Println()
	}
	fmt.Printf("%d thread(s)\n", len(rows))
}

func init() {
	rootCmd.AddCommand(inboxCmd)
}
