package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the local sent-mail ledger",
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger records, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records := openLedger().List()
		if len(records) == 0 {
			fmt.Println("Ledger is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTHREAD\tTO\tSUBJECT\tSENT")
		fmt.Fprintln(w, "──\t──────\t──\t───────\t────")
		for _, r := range records {
			threadID := r.ThreadID
			if threadID == "" {
				threadID = "-"
			}
			sent := time.UnixMilli(r.TimestampMillis).Format("2006-01-02 15:04")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, threadID, r.To, r.Subject, sent)
		}
		w.Flush()
		fmt.Printf("\n%d record(s)\n", len(records))
		return nil
	},
}

var ledgerRmCmd = &cobra.Command{
	Use:   "rm <record-id>",
	Short: "Remove a record without touching Gmail",
	Long: `Remove a ledger record locally. The Gmail thread, if any, is left
alone; use 'outreach trash' to remove both.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openLedger().Remove(args[0]); err != nil {
			return fmt.Errorf("remove record: %w", err)
		}
		fmt.Printf("Removed %s.\n", args[0])
		return nil
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerListCmd)
	ledgerCmd.AddCommand(ledgerRmCmd)
	rootCmd.AddCommand(ledgerCmd)
}
