package in

import (
	"context"

	"dojo/internal/modules/session/dto"
)

// Usecase owns the kata session lifecycle. Each call is a single atomic
// update of the profile document.
type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error)
	Resume(ctx context.Context, slug string) (dto.SessionOutput, error)
	BeginWatch(ctx context.Context, slug string) (dto.SessionOutput, error)
	EndWatch(ctx context.Context, slug string) (dto.SessionOutput, error)
	RecordVerdict(ctx context.Context, input dto.VerdictInput) (dto.RecordOutput, error)
	ManualLog(ctx context.Context, input dto.LogInput) (dto.RecordOutput, error)
	Abandon(ctx context.Context) (dto.AbandonOutput, error)
	GetActive(ctx context.Context) (dto.SessionOutput, error)
	History(ctx context.Context, slug string) ([]dto.EntryOutput, error)
}
