package in

import (
	"context"

	"dojo/internal/modules/generator/dto"
)

// Usecase bounds every collaborator call. Failures surface as
// apperrors.ErrCollaboratorUnavailable.
type Usecase interface {
	Generate(ctx context.Context, input dto.GenerateInput) (dto.ExerciseOutput, error)
	Diagnose(ctx context.Context, input dto.DiagnoseInput) (dto.HintOutput, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
}
