package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dojo/internal/modules/progress/domain"
	progressout "dojo/internal/modules/progress/port/out"
)

const (
	workspaceLogName = "LOG.md"
	centralLogName   = "log.md"
)

type MarkdownJournal struct {
	notesRoot string
}

func NewMarkdownJournal(notesRoot string) progressout.Journal {
	return &MarkdownJournal{notesRoot: notesRoot}
}

func (j *MarkdownJournal) Record(_ context.Context, workspace string, entry domain.LogEntry) error {
	stamp := entry.Timestamp.Format("2006-01-02 15:04")
	text := describe(entry)
	if workspace != "" {
		if err := appendLine(filepath.Join(workspace, workspaceLogName), fmt.Sprintf("- [%s] %s\n", stamp, text)); err != nil {
			return err
		}
	}
	if j.notesRoot == "" {
		return nil
	}
	return appendLine(filepath.Join(j.notesRoot, centralLogName), fmt.Sprintf("- [%s] %s: %s\n", stamp, entry.KataSlug, text))
}

func describe(entry domain.LogEntry) string {
	note := strings.TrimSpace(entry.Note)
	if note == "" {
		note = "(no note)"
	}
	if entry.XPAwarded == 0 {
		return note
	}
	return fmt.Sprintf("%s (%s, +%d xp)", note, entry.QualityTier, entry.XPAwarded)
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append journal %s: %w", path, err)
	}
	return nil
}
