package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/outreachmail/outreach/internal/gmail"
	"github.com/outreachmail/outreach/internal/mime"
)

var threadRaw bool

var threadCmd = &cobra.Command{
	Use:   "thread <thread-id>",
	Short: "Show a full conversation",
	Long: `Fetch and print every message in a Gmail thread, oldest first. HTML
bodies are rendered as plain text unless --raw is given.

Examples:
  outreach thread 18c2f4a9b3d1e07f
  outreach thread 18c2f4a9b3d1e07f --raw`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threadID := args[0]

		session, err := newSession()
		if err != nil {
			return err
		}

		detail, err := newGmailClient(session).FetchThread(cmd.Context(), threadID)
		if err != nil {
			return fmt.Errorf("fetch thread: %w", err)
		}

		printThread(detail)
		return nil
	},
}

func printThread(detail *gmail.ThreadDetail) {
	header := color.New(color.FgCyan, color.Bold)
	meta := color.New(color.Faint)

	header.Println(detail.Subject)
	fmt.Println()

	for i, msg := range detail.Messages {
		if i > 0 {
			fmt.Println()
		}
		meta.Printf("From: %s\n", msg.From)
		if msg.To != "" {
			meta.Printf("To:   %s\n", msg.To)
		}
		if msg.Date != "" {
			meta.Printf("Date: %s\n", msg.Date)
		}
		fmt.Println()
		fmt.Println(messageBody(msg))
	}
}

// messageBody renders one message: preferred HTML stripped to text, the
// plain part otherwise, the snippet as a last resort.
func messageBody(msg gmail.MessageDetail) string {
	switch {
	case msg.BodyHTML != "":
		if threadRaw {
			return msg.BodyHTML
		}
		return mime.StripHTML(msg.BodyHTML)
	case msg.BodyText != "":
		return msg.BodyText
	default:
		return msg.Snippet
	}
}

func init() {
	threadCmd.Flags().BoolVar(&threadRaw, "raw", false, "Print HTML bodies without stripping tags")
	rootCmd.AddCommand(threadCmd)
}
