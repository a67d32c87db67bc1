package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outreachmail/outreach/internal/ledger"
)

var trashCmd = &cobra.Command{
	Use:   "trash <thread-id>",
	Short: "Move a thread to Gmail's trash",
	Long: `Move a whole thread to Gmail's trash and remove its entry from the
local sent-mail ledger. Requires the modify scope.

Examples:
  outreach trash 18c2f4a9b3d1e07f`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threadID := args[0]

		session, err := newSession()
		if err != nil {
			return err
		}

		recordID := findRecordID(openLedger().List(), threadID)

		if err := newMailer(session).Trash(cmd.Context(), threadID, recordID); err != nil {
			return err
		}

		fmt.Printf("Trashed thread %s.\n", threadID)
		return nil
	},
}

// findRecordID returns the ledger record id for a thread, or "".
func findRecordID(records []ledger.Record, threadID string) string {
	for _, r := range records {
		if r.ThreadID == threadID {
			return r.ID
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(trashCmd)
}
