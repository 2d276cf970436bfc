package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	generatordto "dojo/internal/modules/generator/dto"
	generatorin "dojo/internal/modules/generator/port/in"
	harnessdto "dojo/internal/modules/harness/dto"
	harnessin "dojo/internal/modules/harness/port/in"
	sessiondto "dojo/internal/modules/session/dto"
	"dojo/internal/modules/watch/domain"
	"dojo/internal/modules/watch/dto"
	watchin "dojo/internal/modules/watch/port/in"
	watchout "dojo/internal/modules/watch/port/out"
	"dojo/internal/platform/clock"
	apperrors "dojo/internal/platform/errors"
	"dojo/internal/platform/logging"
)

// Sink receives verdicts that change session state.
type Sink interface {
	RecordVerdict(ctx context.Context, input sessiondto.VerdictInput) (sessiondto.RecordOutput, error)
}

type Config struct {
	KataSlug    string
	Workspace   string
	Debounce    time.Duration
	TestTimeout time.Duration
	HintTimeout time.Duration
	Ignore      domain.Ignore
}

type Deps struct {
	Observer  watchout.Observer
	Harness   harnessin.Usecase
	Sink      Sink
	Diagnoser generatorin.Usecase
	Reporter  watchin.Reporter
	Clock     clock.Clock
	Logger    *zap.Logger
}

// Loop turns bursts of file changes into at most one test run at a time. All
// state lives in the goroutine running Run; observer events, run completions,
// forced runs and hints reach it as messages.
type Loop struct {
	cfg  Config
	deps Deps
	log  *zap.Logger
	arm  domain.Arm
}

type runResult struct {
	verdict harnessdto.VerdictOutput
	err     error
}

func NewLoop(cfg Config, deps Deps) *Loop {
	if deps.Clock == nil {
		deps.Clock = clock.SystemClock{}
	}
	if deps.Reporter == nil {
		deps.Reporter = discard{}
	}
	return &Loop{cfg: cfg, deps: deps, log: logging.OrNop(deps.Logger).Named("watch").With(zap.String("kata", cfg.KataSlug))}
}

// Run blocks until ctx ends. force may be nil.
func (l *Loop) Run(ctx context.Context, force <-chan struct{}) error {
	if l.deps.Observer == nil {
		return fmt.Errorf("watch loop has no observer")
	}
	changes, err := l.deps.Observer.Watch(ctx, l.cfg.Workspace)
	if err != nil {
		return fmt.Errorf("watch %s: %w", l.cfg.Workspace, err)
	}
	defer l.deps.Observer.Close()

	var (
		state  = domain.StateIdle
		timer  = time.NewTimer(l.cfg.Debounce)
		timerC <-chan time.Time
		done   = make(chan runResult, 1)
		hints  = make(chan string, 1)
		stop   = make(chan struct{})
		wg     sync.WaitGroup
	)
	timer.Stop()
	defer func() {
		timer.Stop()
		close(stop)
		wg.Wait()
		l.emit(dto.Event{Kind: dto.EventStopped})
	}()

	start := func() {
		l.emit(dto.Event{Kind: dto.EventRunStarted})
		go func() {
			verdict, err := l.deps.Harness.Check(ctx, harnessdto.CheckInput{Workspace: l.cfg.Workspace, Timeout: l.cfg.TestTimeout})
			done <- runResult{verdict: verdict, err: err}
		}()
	}
	fire := func() {
		next, run := state.OnFire()
		if !run && state == domain.StateRunning {
			l.emit(dto.Event{Kind: dto.EventQueued})
		}
		state = next
		if run {
			start()
		}
	}

	l.emit(dto.Event{Kind: dto.EventListening})
	for {
		select {
		case <-ctx.Done():
			if state == domain.StateRunning || state == domain.StatePendingRerun {
				// A run that completed before seeing the stop still counts.
				if res := <-done; res.err == nil && !res.verdict.Canceled {
					l.handle(ctx, res, nil)
				}
			}
			return nil

		case path, ok := <-changes:
			if !ok {
				changes = nil
				l.log.Warn("observer closed")
				continue
			}
			if l.cfg.Ignore.Match(l.cfg.Workspace, path) {
				continue
			}
			state = state.OnChange()
			timer.Reset(l.cfg.Debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			fire()

		case <-force:
			timer.Stop()
			timerC = nil
			fire()

		case res := <-done:
			l.handle(ctx, res, func(detail generatordto.DiagnoseInput) {
				wg.Add(1)
				go func() {
					defer wg.Done()
					hint := l.diagnose(ctx, detail)
					select {
					case hints <- hint:
					case <-stop:
					}
				}()
			})
			var rerun bool
			if state, rerun = state.OnComplete(); rerun {
				start()
			}

		case hint := <-hints:
			l.emit(dto.Event{Kind: dto.EventHint, Hint: hint})
		}
	}
}

// RunOnce runs a single cycle synchronously and waits for the hint, if any.
func (l *Loop) RunOnce(ctx context.Context) (dto.CheckOutput, error) {
	verdict, err := l.deps.Harness.Check(ctx, harnessdto.CheckInput{Workspace: l.cfg.Workspace, Timeout: l.cfg.TestTimeout})
	if err != nil {
		return dto.CheckOutput{}, err
	}
	out := dto.CheckOutput{KataSlug: l.cfg.KataSlug, Verdict: verdict}
	recorded := l.handle(ctx, runResult{verdict: verdict}, func(detail generatordto.DiagnoseInput) {
		out.Hint = l.diagnose(ctx, detail)
	})
	if recorded != nil && recorded.Entry != nil {
		out.Recorded = true
		out.Tier = recorded.Entry.QualityTier
		out.XPAwarded = recorded.Entry.XPAwarded
		out.LevelUps = levelUps(*recorded)
	}
	return out, nil
}

// handle classifies one completed run. It returns the sink's answer when the
// verdict reached the session.
func (l *Loop) handle(ctx context.Context, res runResult, askHint func(generatordto.DiagnoseInput)) *sessiondto.RecordOutput {
	if res.err != nil {
		l.log.Warn("test run failed to start", zap.Error(res.err))
		l.emit(dto.Event{Kind: dto.EventError, Err: res.err})
		return nil
	}
	verdict := res.verdict
	if verdict.Canceled {
		l.log.Debug("discarding canceled run")
		return nil
	}
	l.log.Info("verdict", zap.String("kind", verdict.Kind), zap.Duration("duration", verdict.Duration), zap.Int("failures", len(verdict.Failures)))
	l.emit(dto.Event{Kind: dto.EventVerdict, Verdict: &verdict})

	passed := verdict.Passed()
	record := l.arm.Observe(passed)
	if passed && !record {
		return nil
	}
	if !passed && askHint != nil && l.deps.Diagnoser != nil {
		askHint(diagnoseInput(l.cfg.KataSlug, verdict))
	}
	if l.deps.Sink == nil {
		return nil
	}
	// The session update must not be torn by a stop request.
	out, err := l.deps.Sink.RecordVerdict(context.WithoutCancel(ctx), verdictInput(l.cfg.KataSlug, verdict))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			l.log.Debug("no session to record verdict", zap.Error(err))
			return nil
		}
		l.log.Error("record verdict", zap.Error(err))
		l.emit(dto.Event{Kind: dto.EventError, Err: err})
		return nil
	}
	if out.Entry != nil {
		l.emit(dto.Event{Kind: dto.EventRecorded, Tier: out.Entry.QualityTier, XPAwarded: out.Entry.XPAwarded, LevelUps: levelUps(out)})
	}
	return &out
}

func (l *Loop) diagnose(ctx context.Context, detail generatordto.DiagnoseInput) string {
	hintCtx, cancel := context.WithTimeout(ctx, l.cfg.HintTimeout)
	defer cancel()
	hint, err := l.deps.Diagnoser.Diagnose(hintCtx, detail)
	if err != nil || hint.Text == "" {
		l.log.Debug("no hint", zap.Error(err))
		return dto.NoHint
	}
	return hint.Text
}

func (l *Loop) emit(event dto.Event) {
	event.At = l.deps.Clock.Now()
	event.KataSlug = l.cfg.KataSlug
	event.Workspace = l.cfg.Workspace
	l.deps.Reporter.Report(event)
}

func diagnoseInput(slug string, v harnessdto.VerdictOutput) generatordto.DiagnoseInput {
	failures := make([]generatordto.FailureLine, 0, len(v.Failures))
	for _, f := range v.Failures {
		failures = append(failures, generatordto.FailureLine{Name: f.Name, Message: f.Message})
	}
	return generatordto.DiagnoseInput{KataSlug: slug, Failures: failures, Output: v.Output}
}

func verdictInput(slug string, v harnessdto.VerdictOutput) sessiondto.VerdictInput {
	failures := make([]sessiondto.FailureInput, 0, len(v.Failures))
	for _, f := range v.Failures {
		failures = append(failures, sessiondto.FailureInput{Name: f.Name, Message: f.Message})
	}
	return sessiondto.VerdictInput{KataSlug: slug, Kind: v.Kind, Failures: failures, Duration: v.Duration}
}

func levelUps(out sessiondto.RecordOutput) []string {
	ups := make([]string, 0, len(out.LevelUps))
	for _, up := range out.LevelUps {
		ups = append(ups, fmt.Sprintf("%s: %s -> %s", up.Pillar, up.From, up.To))
	}
	return ups
}

type discard struct{}

func (discard) Report(dto.Event) {}
