package usecase

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"dojo/internal/modules/generator/domain"
	"dojo/internal/modules/generator/dto"
	generatorin "dojo/internal/modules/generator/port/in"
	generatorout "dojo/internal/modules/generator/port/out"
	"dojo/internal/modules/generator/service"
	apperrors "dojo/internal/platform/errors"
)

type Interactor struct {
	generator generatorout.ContentGenerator
	plugins   *service.PluginService
	timeout   time.Duration
	hints     *rate.Limiter
}

// NewInteractor bounds each generator call by timeout. hintsPerMinute <= 0
// disables hint rate limiting. plugins may be nil when no manifest store is
// configured.
func NewInteractor(generator generatorout.ContentGenerator, plugins *service.PluginService, timeout time.Duration, hintsPerMinute int) generatorin.Usecase {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if hintsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(hintsPerMinute)), hintsPerMinute)
	}
	return &Interactor{generator: generator, plugins: plugins, timeout: timeout, hints: limiter}
}

func (i *Interactor) Generate(ctx context.Context, input dto.GenerateInput) (dto.ExerciseOutput, error) {
	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	exercise, err := i.generator.Generate(callCtx, domain.Request{Pillar: input.Pillar, Difficulty: input.Difficulty})
	if err != nil {
		return dto.ExerciseOutput{}, apperrors.Unavailable("content generator", err)
	}
	if err := exercise.Validate(); err != nil {
		return dto.ExerciseOutput{}, apperrors.Unavailable("content generator", err)
	}
	return dto.ExerciseOutput{
		Title:        strings.TrimSpace(exercise.Title),
		Mission:      strings.TrimSpace(exercise.Mission),
		TemplateKind: exercise.TemplateKind,
		Source:       exercise.Source,
	}, nil
}

func (i *Interactor) Diagnose(ctx context.Context, input dto.DiagnoseInput) (dto.HintOutput, error) {
	if !i.hints.Allow() {
		return dto.HintOutput{}, apperrors.Unavailable("hint rate limit reached", nil)
	}
	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	failures := make([]domain.FailureLine, 0, len(input.Failures))
	for _, f := range input.Failures {
		failures = append(failures, domain.FailureLine{Name: f.Name, Message: f.Message})
	}
	hint, err := i.generator.Diagnose(callCtx, domain.FailureDetail{KataSlug: input.KataSlug, Failures: failures, Output: input.Output})
	if err != nil {
		return dto.HintOutput{}, apperrors.Unavailable("diagnosis", err)
	}
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return dto.HintOutput{}, apperrors.Unavailable("diagnosis", domain.ErrEmptyResponse)
	}
	return dto.HintOutput{Text: hint}, nil
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	if i.plugins == nil {
		return []dto.DoctorResult{}, nil
	}
	return i.plugins.Doctor(ctx)
}
