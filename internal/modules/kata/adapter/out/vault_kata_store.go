package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"dojo/internal/modules/kata/domain"
	kataout "dojo/internal/modules/kata/port/out"
	apperrors "dojo/internal/platform/errors"
	"dojo/internal/platform/markdown"
)

type VaultKataStore struct {
	root string
}

func NewVaultKataStore(root string) kataout.KataStore {
	return &VaultKataStore{root: root}
}

type frontmatter struct {
	SchemaVersion int      `yaml:"schema_version"`
	Slug          string   `yaml:"slug"`
	Title         string   `yaml:"title"`
	TemplateKind  string   `yaml:"template_kind"`
	Pillars       []string `yaml:"pillars"`
	Difficulty    string   `yaml:"difficulty,omitempty"`
	CreatedAt     string   `yaml:"created_at"`
}

func (s *VaultKataStore) WorkspacePath(slug string) string {
	return filepath.Join(s.root, slug)
}

func (s *VaultKataStore) Save(_ context.Context, kata domain.Kata) (string, error) {
	dir := s.WorkspacePath(kata.Slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create kata workspace: %w", err)
	}
	meta := frontmatter{
		SchemaVersion: domain.SchemaVersion,
		Slug:          kata.Slug,
		Title:         kata.Title,
		TemplateKind:  string(kata.TemplateKind),
		Pillars:       kata.Pillars,
		Difficulty:    kata.Difficulty,
		CreatedAt:     kata.CreatedAt.Format(time.RFC3339),
	}
	body := fmt.Sprintf("# %s\n\n%s\n", kata.Title, kata.Mission)
	rendered, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, domain.NoteName)
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write kata note: %w", err)
	}
	return path, nil
}

func (s *VaultKataStore) FindBySlug(_ context.Context, slug string) (domain.Kata, error) {
	if strings.TrimSpace(slug) == "" || strings.ContainsAny(slug, `/\`) {
		return domain.Kata{}, fmt.Errorf("%w: invalid kata slug %q", apperrors.ErrInvalidInput, slug)
	}
	kata, err := s.read(filepath.Join(s.WorkspacePath(slug), domain.NoteName))
	if errors.Is(err, os.ErrNotExist) {
		return domain.Kata{}, fmt.Errorf("%w: kata %q", apperrors.ErrNotFound, slug)
	}
	return kata, err
}

func (s *VaultKataStore) Exists(_ context.Context, slug string) (bool, error) {
	_, err := os.Stat(s.WorkspacePath(slug))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat kata workspace: %w", err)
	}
}

func (s *VaultKataStore) List(_ context.Context) ([]domain.Kata, error) {
	matches, err := filepath.Glob(filepath.Join(s.root, "*", domain.NoteName))
	if err != nil {
		return nil, fmt.Errorf("glob kata notes: %w", err)
	}
	sort.Strings(matches)
	out := make([]domain.Kata, 0, len(matches))
	for _, path := range matches {
		kata, readErr := s.read(path)
		if readErr != nil {
			return nil, readErr
		}
		out = append(out, kata)
	}
	return out, nil
}

func (s *VaultKataStore) read(path string) (domain.Kata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.Kata{}, err
	}
	meta := frontmatter{}
	body, err := markdown.Decode(string(content), &meta)
	if err != nil {
		return domain.Kata{}, fmt.Errorf("parse %s: %w", path, err)
	}
	createdAt, _ := time.Parse(time.RFC3339, meta.CreatedAt)
	dir := filepath.Dir(path)
	kata := domain.Kata{
		Slug:          filepath.Base(dir),
		Title:         meta.Title,
		TemplateKind:  domain.TemplateKind(meta.TemplateKind),
		Pillars:       meta.Pillars,
		Difficulty:    meta.Difficulty,
		CreatedAt:     createdAt,
		WorkspacePath: dir,
		Mission:       missionText(body, meta.Title),
	}
	if err := kata.Validate(); err != nil {
		return domain.Kata{}, fmt.Errorf("decode kata %s: %w", path, err)
	}
	return kata, nil
}

func missionText(body, title string) string {
	body = strings.TrimSpace(body)
	body = strings.TrimPrefix(body, "# "+title)
	return strings.TrimSpace(body)
}
