package usecase

import (
	"context"

	"dojo/internal/modules/kata/domain"
	"dojo/internal/modules/kata/dto"
	katain "dojo/internal/modules/kata/port/in"
	"dojo/internal/modules/kata/service"
)

type Interactor struct {
	svc *service.KataService
}

func NewInteractor(svc *service.KataService) katain.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Create(ctx context.Context, input dto.CreateInput) (dto.KataOutput, error) {
	kata, err := i.svc.Create(ctx, input.Title, domain.TemplateKind(input.TemplateKind), input.Pillars, input.Difficulty, input.Mission)
	if err != nil {
		return dto.KataOutput{}, err
	}
	return toOutput(kata), nil
}

func (i *Interactor) Get(ctx context.Context, slug string) (dto.KataDetailOutput, error) {
	kata, err := i.svc.Get(ctx, slug)
	if err != nil {
		return dto.KataDetailOutput{}, err
	}
	return dto.KataDetailOutput{KataOutput: toOutput(kata), Mission: kata.Mission}, nil
}

func (i *Interactor) List(ctx context.Context) ([]dto.KataOutput, error) {
	katas, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.KataOutput, 0, len(katas))
	for _, kata := range katas {
		out = append(out, toOutput(kata))
	}
	return out, nil
}

func (i *Interactor) Reindex(ctx context.Context, _ dto.ReindexInput) (int, error) {
	return i.svc.Reindex(ctx)
}

func toOutput(kata domain.Kata) dto.KataOutput {
	return dto.KataOutput{
		Slug:          kata.Slug,
		Title:         kata.Title,
		TemplateKind:  string(kata.TemplateKind),
		Pillars:       append([]string(nil), kata.Pillars...),
		Difficulty:    kata.Difficulty,
		CreatedAt:     kata.CreatedAt,
		WorkspacePath: kata.WorkspacePath,
	}
}
