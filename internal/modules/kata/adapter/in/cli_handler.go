package in

import (
	"context"

	"dojo/internal/modules/kata/dto"
	katain "dojo/internal/modules/kata/port/in"
)

type CLIHandler struct {
	usecase katain.Usecase
}

func NewCLIHandler(usecase katain.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.KataOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Reindex(ctx context.Context) (int, error) {
	return h.usecase.Reindex(ctx, dto.ReindexInput{})
}
