package in

import (
	"context"

	"dojo/internal/modules/progress/dto"
)

type Usecase interface {
	Snapshot(ctx context.Context) (dto.SnapshotOutput, error)
	History(ctx context.Context, limit int) ([]dto.EntryOutput, error)
}
