// Package mailer orchestrates outbound mail: Gmail transport first, the
// configured webhook fallback second, and the sent-mail ledger on success
// of either.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/outreachmail/outreach/internal/gmail"
	"github.com/outreachmail/outreach/internal/ledger"
	"github.com/outreachmail/outreach/internal/mail"
)

// Fallback is the secondary transport tried when Gmail fails.
type Fallback interface {
	// Configured reports whether an endpoint is set at all.
	Configured() bool

	// Send delivers the message to the endpoint.
	Send(ctx context.Context, to, subject, body string, atts []mail.Attachment) error
}

// Service ties the transports and the ledger together. One Service is
// shared by all user actions; each action is an independent call.
type Service struct {
	gmail    gmail.API
	fallback Fallback
	ledger   *ledger.Ledger
	logger   *slog.Logger

	// nowMillis is swapped in tests for deterministic record timestamps.
	nowMillis func() int64
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a mail service. fallback may be a sender with no endpoint
// configured; it is consulted only after a Gmail failure.
func New(gmailAPI gmail.API, fallback Fallback, l *ledger.Ledger, opts ...Option) *Service {
	s := &Service{
		gmail:     gmailAPI,
		fallback:  fallback,
		ledger:    l,
		logger:    slog.Default(),
		nowMillis: func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendInput is one user-triggered send. Brand fields are optional display
// hints recorded with the ledger entry.
type SendInput struct {
	To              string
	Subject         string
	Body            string
	AttachmentPaths []string
	BrandName       string
	LogoURL         string
	LogoRes         int
}

// Send attempts Gmail first and the fallback second, appending a ledger
// record on whichever succeeds. When no fallback endpoint is configured,
// the original Gmail failure is returned unmodified. Attachments that
// cannot be read are logged and skipped, never fatal.
func (s *Service) Send(ctx context.Context, in SendInput) error {
	atts := mail.LoadAttachments(in.AttachmentPaths, s.logger)

	result, gmailErr := s.gmail.Send(ctx, gmail.SendRequest{
		To:          in.To,
		Subject:     in.Subject,
		Body:        in.Body,
		Attachments: atts,
	})
	if gmailErr == nil {
		// Only a response carrying both ids names a reconcilable thread;
		// anything else is recorded nowhere, matching the send-only success.
		if result.ID != "" && result.ThreadID != "" {
			s.append(in, result.ID, result.ThreadID)
		}
		return nil
	}

	if s.fallback == nil || !s.fallback.Configured() {
		return gmailErr
	}

	s.logger.Debug("gmail transport failed, trying fallback", "error", gmailErr)

	if err := s.fallback.Send(ctx, in.To, in.Subject, in.Body, atts); err != nil {
		return err
	}

	s.append(in, fmt.Sprintf("local_%d", s.nowMillis()), "")
	return nil
}

// Reply sends into an existing thread. No ledger entry is made; the thread
// already has one from the original send.
func (s *Service) Reply(ctx context.Context, threadID, to, subject, body string) error {
	return s.gmail.Reply(ctx, threadID, to, subject, body)
}

// Trash moves the remote thread to Gmail's trash and removes the local
// record. The local removal happens even if the caller only knows the
// record id.
func (s *Service) Trash(ctx context.Context, threadID, recordID string) error {
	if err := s.gmail.TrashThread(ctx, threadID); err != nil {
		return err
	}
	if recordID != "" {
		return s.ledger.Remove(recordID)
	}
	return nil
}

// DeleteLocal removes a record from the ledger without touching Gmail.
func (s *Service) DeleteLocal(recordID string) error {
	return s.ledger.Remove(recordID)
}

func (s *Service) append(in SendInput, id, threadID string) {
	brandName := in.BrandName
	if brandName == "" {
		brandName = deriveBrand(in.Subject)
	}

	record := ledger.Record{
		ID:              id,
		ThreadID:        threadID,
		To:              in.To,
		Subject:         in.Subject,
		TimestampMillis: s.nowMillis(),
		BrandName:       brandName,
		LogoURL:         in.LogoURL,
		LogoRes:         in.LogoRes,
	}
	if err := s.ledger.Append(record); err != nil {
		// The message is already out; a ledger failure only costs the
		// inbox row.
		s.logger.Warn("failed to record sent mail", "id", id, "error", err)
	}
}

const subjectPrefix = "Inquiry about "

// deriveBrand recovers a brand name from a compose-screen subject.
func deriveBrand(subject string) string {
	if strings.HasPrefix(subject, subjectPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(subject, subjectPrefix))
	}
	return subject
}
