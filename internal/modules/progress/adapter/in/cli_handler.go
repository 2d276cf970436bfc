package in

import (
	"context"

	"dojo/internal/modules/progress/dto"
	progressin "dojo/internal/modules/progress/port/in"
)

type CLIHandler struct {
	usecase progressin.Usecase
}

func NewCLIHandler(usecase progressin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Status(ctx context.Context) (dto.SnapshotOutput, error) {
	return h.usecase.Snapshot(ctx)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]dto.EntryOutput, error) {
	return h.usecase.History(ctx, limit)
}
