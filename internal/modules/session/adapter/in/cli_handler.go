package in

import (
	"context"

	sessiondto "dojo/internal/modules/session/dto"
	sessionin "dojo/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, idea, templateKind, pillar string, force bool) (sessiondto.StartOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{Idea: idea, TemplateKind: templateKind, Pillar: pillar, Force: force})
}

func (h CLIHandler) Resume(ctx context.Context, slug string) (sessiondto.SessionOutput, error) {
	return h.usecase.Resume(ctx, slug)
}

func (h CLIHandler) Log(ctx context.Context, slug, note string) (sessiondto.RecordOutput, error) {
	return h.usecase.ManualLog(ctx, sessiondto.LogInput{KataSlug: slug, Note: note})
}

func (h CLIHandler) Abandon(ctx context.Context) (sessiondto.AbandonOutput, error) {
	return h.usecase.Abandon(ctx)
}

func (h CLIHandler) GetActive(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.GetActive(ctx)
}

func (h CLIHandler) History(ctx context.Context, slug string) ([]sessiondto.EntryOutput, error) {
	return h.usecase.History(ctx, slug)
}
