// Package inbox reconciles the local sent-mail ledger with live Gmail
// thread state and the brand directory to produce inbox rows.
package inbox

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/outreachmail/outreach/internal/brands"
	"github.com/outreachmail/outreach/internal/gmail"
	"github.com/outreachmail/outreach/internal/ledger"
	"github.com/outreachmail/outreach/internal/mail"
)

// Row is one inbox entry ready for display. Count is 1 and Preview blank
// when no live summary was available. No unread/new state is tracked.
type Row struct {
	Title    string
	Preview  string
	Count    int
	ThreadID string
	RecordID string
	LogoURL  string
	LogoRes  int
}

// SummaryFetcher is the slice of the Gmail API the reconciler needs.
type SummaryFetcher interface {
	FetchThreadSummary(ctx context.Context, threadID string) (*gmail.ThreadSummary, error)
}

// DirectorySource lists the live brand directory.
type DirectorySource interface {
	FetchBrands(ctx context.Context) ([]brands.Brand, error)
}

// Builder loads inbox rows. The brand directory is fetched once and cached
// for the builder's lifetime; thread summaries are always live reads.
type Builder struct {
	ledger      *ledger.Ledger
	directory   DirectorySource
	summaries   SummaryFetcher
	auth        mail.AuthContext
	logger      *slog.Logger
	concurrency int

	brandCache []brands.Brand
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger for the builder.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithConcurrency bounds the parallel summary fetches per load.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		b.concurrency = n
	}
}

// NewBuilder creates a builder over the given ledger and sources.
// directory may be nil when no remote directory is configured.
func NewBuilder(l *ledger.Ledger, directory DirectorySource, summaries SummaryFetcher, auth mail.AuthContext, opts ...Option) *Builder {
	b := &Builder{
		ledger:      l,
		directory:   directory,
		summaries:   summaries,
		auth:        auth,
		logger:      slog.Default(),
		concurrency: 10,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load produces one row per ledger record, newest first. Rows with a
// thread id are augmented with a live summary when the account holds read
// scope; summary failures degrade that row to an empty preview. All rows
// are resolved before returning, in the ledger's order, so the caller
// refreshes its view exactly once.
func (b *Builder) Load(ctx context.Context) ([]Row, error) {
	if b.brandCache == nil && b.directory != nil {
		list, err := b.directory.FetchBrands(ctx)
		if err != nil {
			b.logger.Debug("brand directory unavailable", "error", err)
		} else {
			b.brandCache = list
		}
	}

	records := b.ledger.List()
	rows := make([]Row, len(records))
	hasRead := b.auth.HasScope(mail.ScopeReadonly)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, record := range records {
		i, record := i, record
		g.Go(func() error {
			rows[i] = b.buildRow(ctx, record, hasRead)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (b *Builder) buildRow(ctx context.Context, record ledger.Record, hasRead bool) Row {
	row := Row{
		Title:    record.Subject,
		Count:    1,
		ThreadID: record.ThreadID,
		RecordID: record.ID,
		LogoURL:  record.LogoURL,
		LogoRes:  record.LogoRes,
	}

	if row.LogoURL == "" && row.LogoRes == 0 {
		name := DeriveBrandName(record.Subject)
		if name == "" {
			name = record.To
		}
		if brand, ok := b.lookupBrand(name); ok {
			row.LogoURL = brand.LogoURL
			row.LogoRes = brand.LogoRes
		}
	}

	if hasRead && record.ThreadID != "" {
		summary, err := b.summaries.FetchThreadSummary(ctx, record.ThreadID)
		if err != nil {
			b.logger.Debug("thread summary unavailable", "threadId", record.ThreadID, "error", err)
		} else {
			row.Preview = summary.LastSnippet
			row.Count = summary.TotalMessages
		}
	}

	return row
}

// lookupBrand checks the live directory first, then the built-in list.
func (b *Builder) lookupBrand(name string) (brands.Brand, bool) {
	if brand, ok := brands.FindByName(b.brandCache, name); ok {
		return brand, true
	}
	return brands.FindByName(brands.Builtin, name)
}

const subjectPrefix = "Inquiry about "

// DeriveBrandName recovers a brand name from a subject line by stripping a
// leading "Re:" and the compose-screen prefix.
func DeriveBrandName(subject string) string {
	s := subject
	if strings.HasPrefix(s, "Re:") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "Re:"))
	}
	if strings.HasPrefix(s, subjectPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(s, subjectPrefix))
	}
	return s
}
