// Package mime builds outbound RFC 822 messages and renders HTML bodies
// for display.
package mime

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/outreachmail/outreach/internal/mail"
)

// nowMillis is swapped in tests to pin the boundary token.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// Compose builds a single message blob from the given fields. With no
// attachments the result is a single-part text/plain message; otherwise a
// multipart/mixed message with one base64 part per attachment. The boundary
// token is time-based; messages for the same ledger are never composed
// concurrently, so that is unique enough.
//
// Compose is a pure transformation: nothing is validated and no errors are
// signaled.
func Compose(from, to, subject, body string, atts []mail.Attachment) string {
	if len(atts) == 0 {
		var headers []string
		if from != "" {
			headers = append(headers, "From: "+from)
		}
		headers = append(headers,
			"To: "+to,
			"Subject: "+subject,
			"MIME-Version: 1.0",
			"Content-Type: text/plain; charset=UTF-8",
		)
		return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
	}

	boundary := fmt.Sprintf("outreach_%d", nowMillis())

	var lines []string
	if from != "" {
		lines = append(lines, "From: "+from)
	}
	lines = append(lines,
		"To: "+to,
		"Subject: "+subject,
		"MIME-Version: 1.0",
		"Content-Type: multipart/mixed; boundary="+boundary,
		"",
		"--"+boundary,
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	)

	for _, att := range atts {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		lines = append(lines,
			"--"+boundary,
			"Content-Type: "+contentType,
			fmt.Sprintf("Content-Disposition: attachment; filename=%q", att.Name),
			"Content-Transfer-Encoding: base64",
			"",
			base64.StdEncoding.EncodeToString(att.Data),
		)
	}

	lines = append(lines, "--"+boundary+"--")
	return strings.Join(lines, "\r\n")
}
