// Package webhook delivers messages to a configured fallback endpoint as
// a multipart form when the Gmail transport fails.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/outreachmail/outreach/internal/mail"
)

// Sender posts messages to a single configured endpoint accepting
// multipart/form-data with fields to, subject, body, and files[].
type Sender struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Sender.
type Option func(*Sender)

// WithLogger sets the logger for the sender.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sender) {
		s.logger = logger
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Sender) {
		s.httpClient = hc
	}
}

// NewSender creates a sender for the given endpoint URL.
func NewSender(url string, opts ...Option) *Sender {
	s := &Sender{
		url:        url,
		httpClient: mail.NewHTTPClient(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether a non-blank endpoint is set.
func (s *Sender) Configured() bool {
	return strings.TrimSpace(s.url) != ""
}

// Send posts the message as a multipart form. A non-2xx response becomes a
// TransportError. Attachments arrive pre-loaded; read failures were already
// handled (logged and skipped) by the loader.
func (s *Sender) Send(ctx context.Context, to, subject, body string, atts []mail.Attachment) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range []struct{ name, value string }{
		{"to", to},
		{"subject", subject},
		{"body", body},
	} {
		if err := w.WriteField(field.name, field.value); err != nil {
			return fmt.Errorf("write form field %s: %w", field.name, err)
		}
	}

	for _, att := range atts {
		part, err := w.CreatePart(fileHeader(att))
		if err != nil {
			return fmt.Errorf("create form part: %w", err)
		}
		if _, err := part.Write(att.Data); err != nil {
			return fmt.Errorf("write form part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.url, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &mail.TransportError{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(msg)),
		}
	}
	return nil
}

// fileHeader builds the part header for one files[] entry, carrying the
// attachment's own content type rather than the multipart default.
func fileHeader(att mail.Attachment) textproto.MIMEHeader {
	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files[]"; filename=%q`, att.Name))
	h.Set("Content-Type", contentType)
	return h
}
