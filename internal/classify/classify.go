// Package classify decides how a candidate file should be read, independent
// of its extension.
package classify

import (
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/Inzamam1121/Process-Doc/internal/document"
)

// Kind is the outcome of probing a file.
type Kind string

const (
	// StructuredDocument is an XML-based container with readable paragraphs.
	StructuredDocument Kind = "structured"
	// Text is a readable UTF-8 file with non-empty content.
	Text Kind = "text"
	// LegacyBinary is an old-format binary document (0xD0 0xCF magic).
	LegacyBinary Kind = "legacy"
	// Unreadable matched no probe.
	Unreadable Kind = "unreadable"
)

var legacyMagic = []byte{0xD0, 0xCF}

// Classifier probes candidate files. All probes are read-only and every read
// error counts as a negative result for that probe, never as a failure.
type Classifier struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger}
}

// Classify probes path as a structured document, then as UTF-8 text, then for
// the legacy binary magic number.
func (c *Classifier) Classify(path string) Kind {
	if isStructured(path) {
		return StructuredDocument
	}
	if isText(path) {
		return Text
	}
	if isLegacyBinary(path) {
		return LegacyBinary
	}
	c.logger.Debug("classify.unreadable", "path", path)
	return Unreadable
}

func isStructured(path string) bool {
	doc, err := document.Open(path)
	if err != nil {
		return false
	}
	return len(doc.Paragraphs) > 0
}

func isText(path string) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if !utf8.Valid(b) {
		return false
	}
	return strings.TrimSpace(string(b)) != ""
}

func isLegacyBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, 2)
	if _, err := f.Read(header); err != nil {
		return false
	}
	return header[0] == legacyMagic[0] && header[1] == legacyMagic[1]
}
