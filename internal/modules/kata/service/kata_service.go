package service

import (
	"context"
	"fmt"
	"strings"

	"dojo/internal/modules/kata/domain"
	kataout "dojo/internal/modules/kata/port/out"
	"dojo/internal/platform/clock"
	apperrors "dojo/internal/platform/errors"
	"dojo/internal/platform/slug"
)

type KataService struct {
	clock      clock.Clock
	store      kataout.KataStore
	scaffolder kataout.Scaffolder
	projector  kataout.IndexProjector
}

func NewKataService(clock clock.Clock, store kataout.KataStore, scaffolder kataout.Scaffolder, projector kataout.IndexProjector) *KataService {
	return &KataService{clock: clock, store: store, scaffolder: scaffolder, projector: projector}
}

func (s *KataService) Create(ctx context.Context, title string, kind domain.TemplateKind, pillars []string, difficulty, mission string) (domain.Kata, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Kata{}, fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}
	if kind == "" {
		kind = domain.TemplateScript
	}

	var existsErr error
	taken := func(candidate string) bool {
		ok, err := s.store.Exists(ctx, candidate)
		if err != nil {
			existsErr = err
			return false
		}
		return ok
	}
	name := slug.NextAvailable(slug.Make(title), taken)
	if existsErr != nil {
		return domain.Kata{}, existsErr
	}

	kata := domain.Kata{
		Slug:          name,
		Title:         title,
		TemplateKind:  kind,
		Pillars:       pillars,
		Difficulty:    difficulty,
		CreatedAt:     s.clock.Now(),
		WorkspacePath: s.store.WorkspacePath(name),
		Mission:       strings.TrimSpace(mission),
	}
	if err := kata.Validate(); err != nil {
		return domain.Kata{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if s.scaffolder != nil {
		if err := s.scaffolder.Scaffold(ctx, kata); err != nil {
			return domain.Kata{}, err
		}
	}
	if _, err := s.store.Save(ctx, kata); err != nil {
		return domain.Kata{}, err
	}
	if s.projector != nil {
		if err := s.projector.UpsertKata(ctx, kata); err != nil {
			return domain.Kata{}, err
		}
	}
	return kata, nil
}

func (s *KataService) Get(ctx context.Context, name string) (domain.Kata, error) {
	return s.store.FindBySlug(ctx, name)
}

func (s *KataService) List(ctx context.Context) ([]domain.Kata, error) {
	return s.store.List(ctx)
}

func (s *KataService) Reindex(ctx context.Context) (int, error) {
	if s.projector == nil {
		return 0, nil
	}
	if err := s.projector.Reset(ctx); err != nil {
		return 0, err
	}
	katas, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, kata := range katas {
		if err := s.projector.UpsertKata(ctx, kata); err != nil {
			return 0, err
		}
	}
	return len(katas), nil
}
