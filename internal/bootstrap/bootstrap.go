package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	generatorinadapter "dojo/internal/modules/generator/adapter/in"
	generatoroutadapter "dojo/internal/modules/generator/adapter/out"
	generatorout "dojo/internal/modules/generator/port/out"
	generatorservice "dojo/internal/modules/generator/service"
	generatorusecase "dojo/internal/modules/generator/usecase"
	harnessoutadapter "dojo/internal/modules/harness/adapter/out"
	harnessusecase "dojo/internal/modules/harness/usecase"
	katainadapter "dojo/internal/modules/kata/adapter/in"
	kataoutadapter "dojo/internal/modules/kata/adapter/out"
	kataservice "dojo/internal/modules/kata/service"
	katausecase "dojo/internal/modules/kata/usecase"
	progressinadapter "dojo/internal/modules/progress/adapter/in"
	progressoutadapter "dojo/internal/modules/progress/adapter/out"
	progressusecase "dojo/internal/modules/progress/usecase"
	progressionusecase "dojo/internal/modules/progression/usecase"
	sessioninadapter "dojo/internal/modules/session/adapter/in"
	sessionservice "dojo/internal/modules/session/service"
	sessionusecase "dojo/internal/modules/session/usecase"
	watchinadapter "dojo/internal/modules/watch/adapter/in"
	watchoutadapter "dojo/internal/modules/watch/adapter/out"
	watchdomain "dojo/internal/modules/watch/domain"
	watchout "dojo/internal/modules/watch/port/out"
	watchusecase "dojo/internal/modules/watch/usecase"
	"dojo/internal/platform/clock"
	"dojo/internal/platform/config"
	"dojo/internal/platform/id"
	"dojo/internal/platform/tx"
	"dojo/internal/ui/dashboard"
)

type App struct {
	KataCLI      katainadapter.CLIHandler
	SessionCLI   sessioninadapter.CLIHandler
	WatchCLI     watchinadapter.CLIHandler
	ProgressCLI  progressinadapter.CLIHandler
	GeneratorCLI generatorinadapter.CLIHandler

	closers []io.Closer
}

func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.UUID{}

	projector, err := kataoutadapter.NewSQLiteKataProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new kata projector: %w", err)
	}
	kataUC := katausecase.NewInteractor(kataservice.NewKataService(
		clk,
		kataoutadapter.NewVaultKataStore(cfg.KataRoot),
		kataoutadapter.NewWorkspaceScaffolder(),
		projector,
	))

	policy, err := progressionusecase.PolicyFromConfig(cfg.Progression)
	if err != nil {
		_ = projector.Close()
		return nil, err
	}
	progressionUC := progressionusecase.NewInteractor(policy)

	store := progressoutadapter.NewFileStore(cfg.ProgressPath, tx.NewFileLockManager(cfg.LockPath), clk)
	journal := progressoutadapter.NewMarkdownJournal(cfg.NotesRoot)

	plugins := generatorservice.NewPluginService(
		generatoroutadapter.NewFileManifestStore(filepath.Join(cfg.StateDir, "plugins")),
		generatoroutadapter.NewGRPCHost(),
		cfg.Generator.Plugin,
	)
	content, err := newContentGenerator(cfg.Generator, plugins)
	if err != nil {
		_ = projector.Close()
		return nil, err
	}
	generatorUC := generatorusecase.NewInteractor(content, plugins, cfg.Generator.Timeout, cfg.Generator.HintsPerMin)

	sessionUC := sessionusecase.NewInteractor(sessionusecase.Dependencies{
		Service:     sessionservice.NewSessionService(clk, ids, progressionUC),
		Store:       store,
		Journal:     journal,
		Katas:       kataUC,
		Generator:   generatorUC,
		Progression: progressionUC,
		Logger:      logger,
	})

	harnessUC := harnessusecase.NewInteractor(
		harnessoutadapter.NewCommandRunner(cfg.Harness.Command, cfg.Harness.Env, cfg.Watch.Grace, logger),
		cfg.Watch.TestTimeout,
	)
	ignore := watchdomain.NewIgnore(cfg.Watch.Ignore)
	watchUC := watchusecase.NewInteractor(
		watchusecase.Settings{
			Debounce:    cfg.Watch.Debounce,
			TestTimeout: cfg.Watch.TestTimeout,
			HintTimeout: cfg.Watch.HintTimeout,
			Ignore:      cfg.Watch.Ignore,
		},
		watchusecase.Dependencies{
			Sessions:  sessionUC,
			Katas:     kataUC,
			Harness:   harnessUC,
			Diagnoser: generatorUC,
			NewObserver: func() (watchout.Observer, error) {
				return watchoutadapter.NewFSNotifyObserver(ignore, logger), nil
			},
			Clock:  clk,
			Logger: logger,
		},
	)

	return &App{
		KataCLI:      katainadapter.NewCLIHandler(kataUC),
		SessionCLI:   sessioninadapter.NewCLIHandler(sessionUC),
		WatchCLI:     watchinadapter.NewCLIHandler(watchUC),
		ProgressCLI:  progressinadapter.NewCLIHandler(progressusecase.NewInteractor(store, progressionUC)),
		GeneratorCLI: generatorinadapter.NewCLIHandler(generatorUC),
		closers:      []io.Closer{projector},
	}, nil
}

func newContentGenerator(cfg config.GeneratorConfig, plugins *generatorservice.PluginService) (generatorout.ContentGenerator, error) {
	switch cfg.Provider {
	case "plugin":
		return plugins, nil
	case "openai":
		return generatoroutadapter.NewOpenAIGenerator(os.Getenv(cfg.APIKeyEnv), cfg.BaseURL, cfg.Model)
	default:
		return generatoroutadapter.NewOfflineGenerator(), nil
	}
}

func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RunWatch runs the watch loop until ctx ends or the user quits. With plain
// set, events are written to out one per line instead of the dashboard.
func RunWatch(ctx context.Context, app *App, slug string, plain bool, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if plain {
		return app.WatchCLI.Watch(ctx, slug, nil, dashboard.NewPlainReporter(out))
	}

	force := make(chan struct{}, 1)
	program := tea.NewProgram(
		dashboard.New(dashboard.Options{KataSlug: slug, Force: force, Cancel: cancel}),
		tea.WithContext(ctx),
		tea.WithOutput(out),
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer program.Quit()
		return app.WatchCLI.Watch(gctx, slug, force, dashboard.NewProgramReporter(program))
	})
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}
