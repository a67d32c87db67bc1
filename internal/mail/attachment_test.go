package mail

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAttachment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0600); err != nil {
		t.Fatal(err)
	}

	att, err := LoadAttachment(path)
	if err != nil {
		t.Fatalf("LoadAttachment() error = %v", err)
	}
	if att.Name != "notes.txt" {
		t.Errorf("Name = %q, want notes.txt", att.Name)
	}
	if string(att.Data) != "hello" {
		t.Errorf("Data = %q", att.Data)
	}
	// .txt resolves to a text/plain variant on every platform's mime table.
	if att.ContentType == "" {
		t.Error("ContentType should be guessed for .txt")
	}
}

func TestLoadAttachment_UnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.zzz-unknown")
	if err := os.WriteFile(path, []byte{0x00}, 0600); err != nil {
		t.Fatal(err)
	}

	att, err := LoadAttachment(path)
	if err != nil {
		t.Fatalf("LoadAttachment() error = %v", err)
	}
	if att.ContentType != "application/octet-stream" {
		t.Errorf("ContentType = %q, want octet-stream default", att.ContentType)
	}
}

func TestLoadAttachment_Missing(t *testing.T) {
	if _, err := LoadAttachment(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("LoadAttachment() of a missing file should fail")
	}
}

// Unreadable paths are skipped, never fatal.
func TestLoadAttachments_SkipsFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "ok.txt")
	if err := os.WriteFile(good, []byte("ok"), 0600); err != nil {
		t.Fatal(err)
	}

	atts := LoadAttachments([]string{good, filepath.Join(dir, "absent")}, nil)
	if len(atts) != 1 {
		t.Fatalf("attachment count = %d, want 1", len(atts))
	}
	if atts[0].Name != "ok.txt" {
		t.Errorf("Name = %q", atts[0].Name)
	}
}
