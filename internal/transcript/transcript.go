// Package transcript renders chat history as plain text and writes the
// downloadable chat-history file.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zulandar/pdfchat/internal/models"
)

// Separator sits between rendered entries.
const Separator = "\n\n"

// Render returns "<You|AI>: <body>" entries joined by a blank line, in
// history order. An empty history renders as "".
func Render(msgs []models.Message) string {
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = m.Speaker() + ": " + m.Body
	}
	return strings.Join(parts, Separator)
}

// FileName returns chat-history-<YYYY-MM-DD>.txt for the given day.
func FileName(t time.Time) string {
	return fmt.Sprintf("chat-history-%s.txt", t.Format("2006-01-02"))
}

// Write stores text under dir using FileName(t) and returns the path.
func Write(dir string, t time.Time, text string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("transcript: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(t))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("transcript: write %s: %w", path, err)
	}
	return path, nil
}
