package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dojo/internal/modules/kata/domain"
	kataout "dojo/internal/modules/kata/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteKataProjector struct {
	db *sql.DB
}

func NewSQLiteKataProjector(dbPath string) (*SQLiteKataProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteKataProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return projector, nil
}

var _ kataout.IndexProjector = (*SQLiteKataProjector)(nil)

func (s *SQLiteKataProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS katas (
  slug TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  template_kind TEXT NOT NULL,
  pillars TEXT NOT NULL,
  difficulty TEXT,
  workspace_path TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create katas table: %w", err)
	}
	return nil
}

func (s *SQLiteKataProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM katas`); err != nil {
		return fmt.Errorf("reset katas: %w", err)
	}
	return nil
}

func (s *SQLiteKataProjector) UpsertKata(ctx context.Context, kata domain.Kata) error {
	const stmt = `
INSERT INTO katas (slug, title, template_kind, pillars, difficulty, workspace_path, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
  title=excluded.title,
  template_kind=excluded.template_kind,
  pillars=excluded.pillars,
  difficulty=excluded.difficulty,
  workspace_path=excluded.workspace_path,
  created_at=excluded.created_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		kata.Slug,
		kata.Title,
		string(kata.TemplateKind),
		strings.Join(kata.Pillars, ","),
		kata.Difficulty,
		kata.WorkspacePath,
		kata.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert kata: %w", err)
	}
	return nil
}

func (s *SQLiteKataProjector) Close() error {
	return s.db.Close()
}
