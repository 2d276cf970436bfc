package out

import (
	"context"

	"dojo/internal/modules/progress/domain"
)

// Store persists the single profile document. Every write replaces the whole
// document atomically.
type Store interface {
	Load(ctx context.Context) (domain.Profile, error)
	Save(ctx context.Context, profile domain.Profile) error
	AppendLog(ctx context.Context, entry domain.LogEntry) (domain.Profile, error)
	// Update runs fn against the current document under the store lock and
	// persists the result. An error from fn leaves the document untouched.
	Update(ctx context.Context, fn func(*domain.Profile) error) (domain.Profile, error)
}

// Journal mirrors log entries into human-readable notes. It is never read
// back.
type Journal interface {
	Record(ctx context.Context, workspace string, entry domain.LogEntry) error
}
