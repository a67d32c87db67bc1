// Package gmail provides a Gmail REST transport for sending, reading,
// replying to, and trashing threads, with per-operation OAuth scopes.
package gmail

import (
	"context"

	"github.com/outreachmail/outreach/internal/mail"
)

// Sender delivers composed messages.
type Sender interface {
	// Send delivers a new message. Requires the gmail.send scope.
	Send(ctx context.Context, req SendRequest) (*SendResult, error)

	// Reply sends a message into an existing thread. The subject gains a
	// "Re:" prefix if it doesn't carry one. Requires the gmail.send scope.
	Reply(ctx context.Context, threadID, to, subject, body string) error
}

// ThreadReader provides read access to Gmail threads.
type ThreadReader interface {
	// FetchThreadSummary returns the snippet and message count for a
	// thread. Requires the gmail.readonly scope.
	FetchThreadSummary(ctx context.Context, threadID string) (*ThreadSummary, error)

	// FetchThread returns the full thread with per-message headers and
	// bodies. Requires the gmail.readonly scope.
	FetchThread(ctx context.Context, threadID string) (*ThreadDetail, error)
}

// ThreadModifier provides write operations on existing threads.
type ThreadModifier interface {
	// TrashThread moves a whole thread to trash. Requires the
	// gmail.modify scope.
	TrashThread(ctx context.Context, threadID string) error
}

// API defines the interface for Gmail operations.
// This interface enables mocking for tests without hitting the real API.
type API interface {
	Sender
	ThreadReader
	ThreadModifier
}

// SendRequest carries everything needed to compose and deliver a message.
type SendRequest struct {
	To          string
	Subject     string
	Body        string
	Attachments []mail.Attachment

	// ThreadID associates the message with an existing thread when replying.
	ThreadID string
}

// SendResult is the Gmail identity of a delivered message. Both fields may
// be blank when the send succeeded but the response could not be decoded.
type SendResult struct {
	ID       string
	ThreadID string
}

// ThreadSummary is a cheap, re-fetched-every-load view of a thread.
type ThreadSummary struct {
	ThreadID      string
	LastSnippet   string
	TotalMessages int
}

// MessageDetail is one message inside a fetched thread. BodyHTML and
// BodyText are mutually exclusive; HTML wins when both exist in the
// payload.
type MessageDetail struct {
	ID       string
	From     string
	To       string
	Date     string // raw header value, not parsed
	Subject  string
	Snippet  string
	BodyHTML string
	BodyText string
}

// ThreadDetail is a full thread, ordered as Gmail returns it.
type ThreadDetail struct {
	ThreadID string
	Subject  string
	Messages []MessageDetail
}
