package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	generatorin "dojo/internal/modules/generator/port/in"
	harnessin "dojo/internal/modules/harness/port/in"
	katain "dojo/internal/modules/kata/port/in"
	sessionin "dojo/internal/modules/session/port/in"
	"dojo/internal/modules/watch/domain"
	"dojo/internal/modules/watch/dto"
	watchin "dojo/internal/modules/watch/port/in"
	watchout "dojo/internal/modules/watch/port/out"
	"dojo/internal/modules/watch/service"
	"dojo/internal/platform/clock"
	apperrors "dojo/internal/platform/errors"
	"dojo/internal/platform/logging"
)

type Settings struct {
	Debounce    time.Duration
	TestTimeout time.Duration
	HintTimeout time.Duration
	Ignore      []string
}

type Dependencies struct {
	Sessions    sessionin.Usecase
	Katas       katain.Usecase
	Harness     harnessin.Usecase
	Diagnoser   generatorin.Usecase
	NewObserver func() (watchout.Observer, error)
	Clock       clock.Clock
	Logger      *zap.Logger
}

type Interactor struct {
	settings Settings
	deps     Dependencies
	log      *zap.Logger
}

func NewInteractor(settings Settings, deps Dependencies) watchin.Usecase {
	return &Interactor{settings: settings, deps: deps, log: logging.OrNop(deps.Logger)}
}

// Watch moves the session to Watching for the lifetime of the loop and back
// to Active afterwards.
func (i *Interactor) Watch(ctx context.Context, input dto.WatchInput, reporter watchin.Reporter) error {
	slug := input.KataSlug
	if slug == "" {
		active, err := i.deps.Sessions.GetActive(ctx)
		if err != nil {
			return err
		}
		slug = active.KataSlug
	}
	session, err := i.deps.Sessions.BeginWatch(ctx, slug)
	if err != nil {
		return err
	}
	defer func() {
		if _, err := i.deps.Sessions.EndWatch(context.WithoutCancel(ctx), slug); err != nil {
			i.log.Warn("end watch", zap.String("kata", slug), zap.Error(err))
		}
	}()

	observer, err := i.deps.NewObserver()
	if err != nil {
		return err
	}
	loop := service.NewLoop(i.config(slug, session.Workspace), service.Deps{
		Observer:  observer,
		Harness:   i.deps.Harness,
		Sink:      i.deps.Sessions,
		Diagnoser: i.deps.Diagnoser,
		Reporter:  reporter,
		Clock:     i.deps.Clock,
		Logger:    i.deps.Logger,
	})
	return loop.Run(ctx, input.Force)
}

// Check resolves the kata's workspace from its session, or from the catalog
// when it has none, and runs one cycle.
func (i *Interactor) Check(ctx context.Context, slug string) (dto.CheckOutput, error) {
	workspace := ""
	if slug == "" {
		active, err := i.deps.Sessions.GetActive(ctx)
		if err != nil {
			return dto.CheckOutput{}, err
		}
		slug, workspace = active.KataSlug, active.Workspace
	} else {
		kata, err := i.deps.Katas.Get(ctx, slug)
		if err != nil {
			return dto.CheckOutput{}, err
		}
		workspace = kata.WorkspacePath
	}
	if workspace == "" {
		return dto.CheckOutput{}, fmt.Errorf("%w: kata %s has no workspace", apperrors.ErrNotFound, slug)
	}
	loop := service.NewLoop(i.config(slug, workspace), service.Deps{
		Harness:   i.deps.Harness,
		Sink:      i.deps.Sessions,
		Diagnoser: i.deps.Diagnoser,
		Clock:     i.deps.Clock,
		Logger:    i.deps.Logger,
	})
	return loop.RunOnce(ctx)
}

func (i *Interactor) config(slug, workspace string) service.Config {
	return service.Config{
		KataSlug:    slug,
		Workspace:   workspace,
		Debounce:    i.settings.Debounce,
		TestTimeout: i.settings.TestTimeout,
		HintTimeout: i.settings.HintTimeout,
		Ignore:      domain.NewIgnore(i.settings.Ignore),
	}
}
