package in

import (
	"context"

	"dojo/internal/modules/kata/dto"
)

type Usecase interface {
	Create(ctx context.Context, input dto.CreateInput) (dto.KataOutput, error)
	Get(ctx context.Context, slug string) (dto.KataDetailOutput, error)
	List(ctx context.Context) ([]dto.KataOutput, error)
	Reindex(ctx context.Context, input dto.ReindexInput) (int, error)
}
