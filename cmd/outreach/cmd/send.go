package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/outreachmail/outreach/internal/brands"
	"github.com/outreachmail/outreach/internal/mailer"
)

var (
	sendTo       string
	sendSubject  string
	sendBody     string
	sendBodyFile string
	sendAttach   []string
	sendBrand    string
	sendTemplate string
)

// composeTemplates are the canned opener bodies offered on the compose
// screen. %s is the brand name.
var composeTemplates = map[string]string{
	"intro":  "Hello %s team, I love your products.",
	"collab": "Hi, seeking collaboration opportunities with %s.",
	"info":   "Hello, requesting more information about latest releases.",
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an outreach email",
	Long: `Send an email through Gmail, falling back to the configured webhook
endpoint when Gmail fails. A successful send is recorded in the local
sent-mail ledger.

With --brand, the recipient and subject default from the brand directory:
the brand's contact email and "Inquiry about <brand>". --template fills the
body with one of the canned openers (intro, collab, info).

Examples:
  outreach send --to press@example.com --subject "Hello" --body "Hi there"
  outreach send --brand "Skims" --template collab
  outreach send --brand "Rhode" --body-file pitch.txt --attach kit.pdf`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := buildSendInput(cmd.Context())
		if err != nil {
			return err
		}

		session, err := newSession()
		if err != nil {
			return err
		}

		if err := newMailer(session).Send(cmd.Context(), *in); err != nil {
			return err
		}

		fmt.Printf("Sent to %s.\n", in.To)
		return nil
	},
}

// buildSendInput resolves flags, brand defaults, and the body source into
// one send request.
func buildSendInput(ctx context.Context) (*mailer.SendInput, error) {
	in := &mailer.SendInput{
		To:              sendTo,
		Subject:         sendSubject,
		AttachmentPaths: sendAttach,
		BrandName:       sendBrand,
	}

	if sendBrand != "" {
		brand, err := resolveBrand(ctx, sendBrand)
		if err != nil {
			return nil, err
		}
		if in.To == "" {
			in.To = brand.Email
		}
		if in.Subject == "" {
			in.Subject = "Inquiry about " + brand.Name
		}
		in.BrandName = brand.Name
		in.LogoURL = brand.LogoURL
		in.LogoRes = brand.LogoRes
	}

	body, err := resolveBody(sendBrand)
	if err != nil {
		return nil, err
	}
	in.Body = body

	if in.To == "" {
		return nil, fmt.Errorf("no recipient: use --to, or --brand with a directory entry that has an email")
	}
	if in.Subject == "" {
		return nil, fmt.Errorf("no subject: use --subject or --brand")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, fmt.Errorf("no body: use --body, --body-file, or --template")
	}

	return in, nil
}

// resolveBrand looks the name up in the live directory first, then the
// built-in list.
func resolveBrand(ctx context.Context, name string) (brands.Brand, error) {
	if d := newDirectory(); d != nil {
		list, err := d.FetchBrands(ctx)
		if err != nil {
			logger.Debug("brand directory unavailable", "error", err)
		} else if brand, ok := brands.FindByName(list, name); ok {
			return brand, nil
		}
	}
	if brand, ok := brands.FindByName(brands.Builtin, name); ok {
		return brand, nil
	}
	return brands.Brand{}, fmt.Errorf("unknown brand %q", name)
}

func resolveBody(brand string) (string, error) {
	set := 0
	for _, s := range []string{sendBody, sendBodyFile, sendTemplate} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return "", fmt.Errorf("--body, --body-file, and --template are mutually exclusive")
	}

	switch {
	case sendBody != "":
		return sendBody, nil
	case sendBodyFile != "":
		data, err := os.ReadFile(sendBodyFile)
		if err != nil {
			return "", fmt.Errorf("read body file: %w", err)
		}
		return string(data), nil
	case sendTemplate != "":
		tmpl, ok := composeTemplates[sendTemplate]
		if !ok {
			return "", fmt.Errorf("unknown template %q (have: intro, collab, info)", sendTemplate)
		}
		if strings.Contains(tmpl, "%s") {
			if brand == "" {
				return "", fmt.Errorf("template %q needs --brand", sendTemplate)
			}
			return fmt.Sprintf(tmpl, brand), nil
		}
		return tmpl, nil
	}
	return "", nil
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "Recipient email address")
	sendCmd.Flags().StringVar(&sendSubject, "subject", "", "Subject line")
	sendCmd.Flags().StringVar(&sendBody, "body", "", "Message body")
	sendCmd.Flags().StringVar(&sendBodyFile, "body-file", "", "Read the message body from a file")
	sendCmd.Flags().StringArrayVar(&sendAttach, "attach", nil, "Attachment path (repeatable)")
	sendCmd.Flags().StringVar(&sendBrand, "brand", "", "Brand name to default recipient and subject from")
	sendCmd.Flags().StringVar(&sendTemplate, "template", "", "Canned body template: intro, collab, info")
	rootCmd.AddCommand(sendCmd)
}
