package in

import (
	"context"

	"dojo/internal/modules/generator/dto"
	generatorin "dojo/internal/modules/generator/port/in"
)

type CLIHandler struct {
	usecase generatorin.Usecase
}

func NewCLIHandler(usecase generatorin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}
