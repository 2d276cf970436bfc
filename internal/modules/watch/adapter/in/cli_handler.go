package in

import (
	"context"

	"dojo/internal/modules/watch/dto"
	watchin "dojo/internal/modules/watch/port/in"
)

type CLIHandler struct {
	usecase watchin.Usecase
}

func NewCLIHandler(usecase watchin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Watch(ctx context.Context, slug string, force <-chan struct{}, reporter watchin.Reporter) error {
	return h.usecase.Watch(ctx, dto.WatchInput{KataSlug: slug, Force: force}, reporter)
}

func (h CLIHandler) Check(ctx context.Context, slug string) (dto.CheckOutput, error) {
	return h.usecase.Check(ctx, slug)
}
