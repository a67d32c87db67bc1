package mail

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
)

// Attachment is one file ready to ride along with an outbound message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// LoadAttachment reads one file from disk. The display name is the path's
// base name; the content type is guessed from the extension, defaulting to
// application/octet-stream.
func LoadAttachment(path string) (Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("read attachment: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return Attachment{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// LoadAttachments reads each path, skipping files that cannot be read.
// A read failure is logged and the attachment dropped; it never fails the
// whole send. Attachments with no resolvable name get attachment_<index>.
func LoadAttachments(paths []string, logger *slog.Logger) []Attachment {
	if logger == nil {
		logger = slog.Default()
	}

	var atts []Attachment
	for i, path := range paths {
		att, err := LoadAttachment(path)
		if err != nil {
			logger.Warn("failed to attach file", "path", path, "error", err)
			continue
		}
		if att.Name == "" || att.Name == "." {
			att.Name = fmt.Sprintf("attachment_%d", i)
		}
		atts = append(atts, att)
	}
	return atts
}
