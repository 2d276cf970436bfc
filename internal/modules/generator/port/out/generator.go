package out

import (
	"context"

	"dojo/internal/modules/generator/domain"
)

// ContentGenerator produces exercise text and failure hints. Callers treat it
// as slow and possibly unavailable.
type ContentGenerator interface {
	Generate(ctx context.Context, req domain.Request) (domain.Exercise, error)
	Diagnose(ctx context.Context, detail domain.FailureDetail) (string, error)
}

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Generate(ctx context.Context, manifest domain.Manifest, req domain.Request) (domain.Exercise, error)
	Diagnose(ctx context.Context, manifest domain.Manifest, detail domain.FailureDetail) (string, error)
}
