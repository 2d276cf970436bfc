package out

import (
	"context"

	"dojo/internal/modules/kata/domain"
)

// KataStore is the source of truth: one KATA.md note per workspace.
type KataStore interface {
	Save(ctx context.Context, kata domain.Kata) (string, error)
	FindBySlug(ctx context.Context, slug string) (domain.Kata, error)
	Exists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context) ([]domain.Kata, error)
	WorkspacePath(slug string) string
}

type Scaffolder interface {
	Scaffold(ctx context.Context, kata domain.Kata) error
}

type IndexProjector interface {
	Reset(ctx context.Context) error
	UpsertKata(ctx context.Context, kata domain.Kata) error
}
