// Package ledger persists the list of messages the app has sent.
package ledger

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/outreachmail/outreach/internal/prefs"
)

const sentKey = "sent"

// Record is one locally known outbound message. ID is the Gmail message id,
// or a synthesized local_<epoch-millis> id when the message went out through
// the fallback transport; ThreadID is empty in that case. LogoRes is a
// handle into the bundled brand artwork, 0 meaning none.
type Record struct {
	ID              string `json:"id"`
	ThreadID        string `json:"threadId"`
	To              string `json:"to"`
	Subject         string `json:"subject"`
	TimestampMillis int64  `json:"timestamp"`
	BrandName       string `json:"brandName"`
	LogoURL         string `json:"logoUrl"`
	LogoRes         int    `json:"logoRes"`
}

// Ledger is the durable sent-mail list. Records are stored oldest-first and
// listed newest-first. Every mutation round-trips the whole collection; the
// store serializes writers within the process.
type Ledger struct {
	store *prefs.Store
}

// New returns a ledger backed by the given prefs store.
func New(store *prefs.Store) *Ledger {
	return &Ledger{store: store}
}

// List returns all records in descending timestamp order. Missing or
// malformed storage yields an empty list, never an error.
func (l *Ledger) List() []Record {
	records := l.read()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TimestampMillis > records[j].TimestampMillis
	})
	return records
}

// Append adds a record and persists the full list.
func (l *Ledger) Append(record Record) error {
	records := l.read()
	records = append(records, record)
	return l.write(records)
}

// Remove drops the record with the given id, preserving the order of the
// rest. Removing an unknown id is a no-op.
func (l *Ledger) Remove(id string) error {
	records := l.read()
	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	return l.write(kept)
}

// read returns the persisted records in stored (oldest-first) order.
func (l *Ledger) read() []Record {
	raw := l.store.Get(sentKey)
	if raw == "" {
		return nil
	}
	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil
	}
	return records
}

func (l *Ledger) write(records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	return l.store.Put(sentKey, string(data))
}
