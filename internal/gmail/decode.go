package gmail

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/outreachmail/outreach/internal/mail"
)

// Gmail API JSON response types (unexported, used only for JSON unmarshaling).

type sendResponse struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

type headerJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type bodyJSON struct {
	Data string `json:"data"` // base64url encoded (unpadded)
}

type partJSON struct {
	MimeType string     `json:"mimeType"`
	Body     *bodyJSON  `json:"body"`
	Parts    []partJSON `json:"parts"`
}

type payloadJSON struct {
	MimeType string       `json:"mimeType"`
	Headers  []headerJSON `json:"headers"`
	Body     *bodyJSON    `json:"body"`
	Parts    []partJSON   `json:"parts"`
}

type threadMessageJSON struct {
	ID      string       `json:"id"`
	Snippet string       `json:"snippet"`
	Payload *payloadJSON `json:"payload"`
}

type threadResponse struct {
	ID       string              `json:"id"`
	Snippet  string              `json:"snippet"`
	Messages []threadMessageJSON `json:"messages"`
}

// decodeSendResponse extracts the message identity from a send response.
// A shape that doesn't parse yields an empty result, not an error: the
// send itself succeeded and the identity is merely absent.
func decodeSendResponse(data []byte) SendResult {
	var resp sendResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return SendResult{}
	}
	return SendResult{ID: resp.ID, ThreadID: resp.ThreadID}
}

// decodeThreadSummary extracts the summary view from a metadata-format
// thread response. A blank top-level snippet falls back to the snippet of
// the last message.
func decodeThreadSummary(threadID string, data []byte) (*ThreadSummary, error) {
	var resp threadResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &mail.MalformedResponseError{What: "thread metadata"}
	}

	snippet := resp.Snippet
	if snippet == "" && len(resp.Messages) > 0 {
		snippet = resp.Messages[len(resp.Messages)-1].Snippet
	}

	return &ThreadSummary{
		ThreadID:      threadID,
		LastSnippet:   snippet,
		TotalMessages: len(resp.Messages),
	}, nil
}

// decodeThread extracts the full thread view from a full-format response.
// The thread subject is the first non-blank message subject, or the
// top-level snippet when every message lacks one.
func decodeThread(threadID string, data []byte) (*ThreadDetail, error) {
	var resp threadResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &mail.MalformedResponseError{What: "thread full"}
	}

	detail := &ThreadDetail{ThreadID: threadID}
	for _, m := range resp.Messages {
		md := MessageDetail{ID: m.ID, Snippet: m.Snippet}
		if m.Payload != nil {
			for _, h := range m.Payload.Headers {
				switch h.Name {
				case "From":
					md.From = h.Value
				case "To":
					md.To = h.Value
				case "Date":
					md.Date = h.Value
				case "Subject":
					md.Subject = h.Value
				}
			}
			md.BodyHTML, md.BodyText = extractBody(m.Payload)
		}
		if detail.Subject == "" && md.Subject != "" {
			detail.Subject = md.Subject
		}
		detail.Messages = append(detail.Messages, md)
	}

	if detail.Subject == "" {
		detail.Subject = resp.Snippet
	}
	return detail, nil
}

// extractBody walks the MIME part tree for a message body, preferring a
// text/html part and falling back to text/plain. Exactly one of the
// returned strings is non-blank when a body exists.
func extractBody(payload *payloadJSON) (html, text string) {
	direct := decodeBase64URLString(payloadData(payload))
	if direct != "" {
		if payload.MimeType == "text/html" {
			return direct, ""
		}
		return "", direct
	}

	html = findPart(payload.Parts, "text/html")
	if html != "" {
		return html, ""
	}
	return "", findPart(payload.Parts, "text/plain")
}

// findPart searches part trees depth-first for the first non-blank body of
// the given MIME type.
func findPart(parts []partJSON, mimeType string) string {
	for _, p := range parts {
		if p.MimeType == mimeType && p.Body != nil {
			if d := decodeBase64URLString(p.Body.Data); d != "" {
				return d
			}
		}
		if d := findPart(p.Parts, mimeType); d != "" {
			return d
		}
	}
	return ""
}

func payloadData(payload *payloadJSON) string {
	if payload == nil || payload.Body == nil {
		return ""
	}
	return payload.Body.Data
}

// decodeBase64URLString decodes base64url data tolerating optional padding,
// as Gmail sometimes pads and sometimes doesn't. Undecodable data yields "".
func decodeBase64URLString(s string) string {
	if s == "" {
		return ""
	}
	var (
		b   []byte
		err error
	)
	if strings.ContainsRune(s, '=') {
		b, err = base64.URLEncoding.DecodeString(s)
	} else {
		b, err = base64.RawURLEncoding.DecodeString(s)
	}
	if err != nil {
		return ""
	}
	return string(b)
}
