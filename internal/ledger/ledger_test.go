package ledger

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/outreachmail/outreach/internal/prefs"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	return New(prefs.Open(t.TempDir(), "mail"))
}

func TestLedger_EmptyList(t *testing.T) {
	l := newTestLedger(t)

	if got := l.List(); len(got) != 0 {
		t.Errorf("List() on empty ledger = %v, want empty", got)
	}
}

func TestLedger_AppendRoundTrip(t *testing.T) {
	l := newTestLedger(t)

	record := Record{
		ID:              "msg_1",
		ThreadID:        "thread_1",
		To:              "press@example.com",
		Subject:         "Inquiry about Skims",
		TimestampMillis: 1700000000000,
		BrandName:       "Skims",
		LogoURL:         "https://cdn.example.com/skims.png",
		LogoRes:         3,
	}
	if err := l.Append(record); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got := l.List()
	if len(got) != 1 {
		t.Fatalf("List() len = %d, want 1", len(got))
	}
	if diff := cmp.Diff(record, got[0]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

// Empty-string fields survive the round trip distinct from absent ones;
// fallback sends store an empty thread id that must come back empty.
func TestLedger_EmptyFieldsPreserved(t *testing.T) {
	l := newTestLedger(t)

	record := Record{
		ID:              "local_1700000000000",
		ThreadID:        "",
		To:              "press@example.com",
		Subject:         "",
		TimestampMillis: 1700000000000,
	}
	if err := l.Append(record); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got := l.List()
	if len(got) != 1 {
		t.Fatalf("List() len = %d, want 1", len(got))
	}
	if diff := cmp.Diff(record, got[0]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestLedger_ListNewestFirst(t *testing.T) {
	l := newTestLedger(t)

	for _, r := range []Record{
		{ID: "a", TimestampMillis: 100},
		{ID: "c", TimestampMillis: 300},
		{ID: "b", TimestampMillis: 200},
	} {
		if err := l.Append(r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got := l.List()
	wantOrder := []string{"c", "b", "a"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("List()[%d].ID = %q, want %q", i, got[i].ID, want)
		}
	}
}

func TestLedger_Remove(t *testing.T) {
	l := newTestLedger(t)

	for _, r := range []Record{
		{ID: "a", TimestampMillis: 100},
		{ID: "b", TimestampMillis: 200},
		{ID: "c", TimestampMillis: 300},
	} {
		if err := l.Append(r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	if err := l.Remove("b"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	got := l.List()
	if len(got) != 2 {
		t.Fatalf("List() len after Remove = %d, want 2", len(got))
	}
	for _, r := range got {
		if r.ID == "b" {
			t.Errorf("removed record still present: %v", r)
		}
	}
}

func TestLedger_RemoveUnknownIsNoop(t *testing.T) {
	l := newTestLedger(t)

	if err := l.Append(Record{ID: "a", TimestampMillis: 100}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := l.Remove("ghost"); err != nil {
		t.Fatalf("Remove() of unknown id error = %v", err)
	}
	if got := l.List(); len(got) != 1 {
		t.Errorf("List() len = %d, want 1", len(got))
	}
}

func TestLedger_RemoveLastLeavesEmptyList(t *testing.T) {
	store := prefs.Open(t.TempDir(), "mail")
	l := New(store)

	if err := l.Append(Record{ID: "a", TimestampMillis: 100}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := l.Remove("a"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	// The stored value is an empty JSON list, not a missing key.
	if raw := store.Get("sent"); raw != "[]" {
		t.Errorf("stored value after removing last record = %q, want %q", raw, "[]")
	}
	if got := l.List(); len(got) != 0 {
		t.Errorf("List() len = %d, want 0", len(got))
	}
}

func TestLedger_CorruptStoreReadsEmpty(t *testing.T) {
	store := prefs.Open(t.TempDir(), "mail")
	if err := store.Put("sent", "{not a list"); err != nil {
		t.Fatal(err)
	}

	l := New(store)
	if got := l.List(); len(got) != 0 {
		t.Errorf("List() on corrupt store = %v, want empty", got)
	}

	// Appending resets the store to a valid list.
	if err := l.Append(Record{ID: "a", TimestampMillis: 100}); err != nil {
		t.Fatalf("Append() on corrupt store error = %v", err)
	}
	if got := l.List(); len(got) != 1 {
		t.Errorf("List() after recovery len = %d, want 1", len(got))
	}
}
