package gmail

import (
	"context"
	"fmt"
	"sync"
)

// MockAPI is a mock implementation of the Gmail API for testing.
type MockAPI struct {
	mu sync.Mutex

	// Result returned by Send when SendError is nil
	SendResult *SendResult

	// Thread summaries and details indexed by thread ID
	Summaries map[string]*ThreadSummary
	Threads   map[string]*ThreadDetail

	// Error injection
	SendError    error
	ReplyError   error
	SummaryError map[string]error // Per-thread errors
	ThreadError  map[string]error
	TrashError   error

	// Call tracking for assertions
	SendCalls    []SendRequest
	ReplyCalls   []string // thread IDs
	SummaryCalls []string
	ThreadCalls  []string
	TrashCalls   []string
	LastSubject  string // Last subject passed to Reply, after normalization
}

// NewMockAPI creates a new mock API with empty state.
func NewMockAPI() *MockAPI {
	return &MockAPI{
		Summaries:    make(map[string]*ThreadSummary),
		Threads:      make(map[string]*ThreadDetail),
		SummaryError: make(map[string]error),
		ThreadError:  make(map[string]error),
	}
}

// Send records the request and returns the configured result.
func (m *MockAPI) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendCalls = append(m.SendCalls, req)

	if m.SendError != nil {
		return nil, m.SendError
	}
	if m.SendResult == nil {
		return &SendResult{ID: "msg_mock", ThreadID: "thread_mock"}, nil
	}
	return m.SendResult, nil
}

// Reply records the call, applying the same subject normalization as the
// real client so assertions can check it.
func (m *MockAPI) Reply(ctx context.Context, threadID, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplyCalls = append(m.ReplyCalls, threadID)
	if len(subject) < 3 || subject[:3] != "Re:" {
		subject = "Re: " + subject
	}
	m.LastSubject = subject

	return m.ReplyError
}

// FetchThreadSummary returns the configured summary.
func (m *MockAPI) FetchThreadSummary(ctx context.Context, threadID string) (*ThreadSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryCalls = append(m.SummaryCalls, threadID)

	if err, ok := m.SummaryError[threadID]; ok && err != nil {
		return nil, err
	}
	s, ok := m.Summaries[threadID]
	if !ok {
		return nil, fmt.Errorf("no summary configured for %s", threadID)
	}
	return s, nil
}

// FetchThread returns the configured thread.
func (m *MockAPI) FetchThread(ctx context.Context, threadID string) (*ThreadDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ThreadCalls = append(m.ThreadCalls, threadID)

	if err, ok := m.ThreadError[threadID]; ok && err != nil {
		return nil, err
	}
	t, ok := m.Threads[threadID]
	if !ok {
		return nil, fmt.Errorf("no thread configured for %s", threadID)
	}
	return t, nil
}

// TrashThread records a trash call.
func (m *MockAPI) TrashThread(ctx context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrashCalls = append(m.TrashCalls, threadID)
	return m.TrashError
}

// Ensure MockAPI implements API interface.
var _ API = (*MockAPI)(nil)
