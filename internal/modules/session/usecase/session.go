package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	generatordto "dojo/internal/modules/generator/dto"
	generatorin "dojo/internal/modules/generator/port/in"
	katadto "dojo/internal/modules/kata/dto"
	katain "dojo/internal/modules/kata/port/in"
	progressdomain "dojo/internal/modules/progress/domain"
	progressout "dojo/internal/modules/progress/port/out"
	progressiondto "dojo/internal/modules/progression/dto"
	progressionin "dojo/internal/modules/progression/port/in"
	"dojo/internal/modules/session/domain"
	sessiondto "dojo/internal/modules/session/dto"
	sessionin "dojo/internal/modules/session/port/in"
	"dojo/internal/modules/session/service"
	apperrors "dojo/internal/platform/errors"
	"dojo/internal/platform/logging"
)

type Dependencies struct {
	Service     *service.SessionService
	Store       progressout.Store
	Journal     progressout.Journal
	Katas       katain.Usecase
	Generator   generatorin.Usecase
	Progression progressionin.Usecase
	Logger      *zap.Logger
}

type Interactor struct {
	svc         *service.SessionService
	store       progressout.Store
	journal     progressout.Journal
	katas       katain.Usecase
	generator   generatorin.Usecase
	progression progressionin.Usecase
	log         *zap.Logger
}

func NewInteractor(deps Dependencies) sessionin.Usecase {
	return &Interactor{
		svc:         deps.Service,
		store:       deps.Store,
		journal:     deps.Journal,
		katas:       deps.Katas,
		generator:   deps.Generator,
		progression: deps.Progression,
		log:         logging.OrNop(deps.Logger).Named("session"),
	}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.StartOutput, error) {
	profile, err := i.store.Load(ctx)
	if err != nil {
		return sessiondto.StartOutput{}, err
	}
	if !input.Force {
		if err := domain.CheckSlot(profile, ""); err != nil {
			return sessiondto.StartOutput{}, err
		}
	}

	hint := i.progression.DifficultyHint(progressiondto.HintInput{XPByPillar: profile.XPByPillar, Pillar: input.Pillar})
	create := katadto.CreateInput{
		TemplateKind: input.TemplateKind,
		Pillars:      []string{hint.Pillar},
		Difficulty:   hint.Difficulty,
	}
	source := "idea"
	if idea := strings.TrimSpace(input.Idea); idea != "" {
		create.Title, create.Mission = splitIdea(idea)
	} else {
		if i.generator == nil {
			return sessiondto.StartOutput{}, apperrors.Unavailable("content generator", nil)
		}
		exercise, err := i.generator.Generate(ctx, generatordto.GenerateInput{Pillar: hint.Pillar, Difficulty: hint.Difficulty})
		if err != nil {
			return sessiondto.StartOutput{}, err
		}
		create.Title, create.Mission, source = exercise.Title, exercise.Mission, exercise.Source
		if create.TemplateKind == "" {
			create.TemplateKind = exercise.TemplateKind
		}
	}

	kata, err := i.katas.Create(ctx, create)
	if err != nil {
		return sessiondto.StartOutput{}, err
	}

	var opened service.Outcome
	abandoned := ""
	if _, err := i.store.Update(ctx, func(p *progressdomain.Profile) error {
		var openErr error
		opened, abandoned, openErr = i.svc.Open(p, kata.Slug, kata.WorkspacePath, kata.Pillars, input.Force)
		return openErr
	}); err != nil {
		// The kata stays in the catalog without a session.
		i.log.Warn("kata created without a session", zap.String("kata", kata.Slug), zap.String("workspace", kata.WorkspacePath), zap.Error(err))
		return sessiondto.StartOutput{}, fmt.Errorf("open session for kata %s: %w", kata.Slug, err)
	}
	if abandoned != "" {
		i.log.Info("session abandoned", zap.String("kata", abandoned), zap.String("reason", "forced start"))
	}
	i.log.Info("session started",
		zap.String("kata", kata.Slug),
		zap.String("session", opened.Session.ID),
		zap.Strings("pillars", kata.Pillars),
		zap.String("difficulty", hint.Difficulty),
		zap.String("source", source),
	)
	return sessiondto.StartOutput{
		SessionID:  opened.Session.ID,
		KataSlug:   kata.Slug,
		Title:      kata.Title,
		Mission:    create.Mission,
		Workspace:  kata.WorkspacePath,
		Pillars:    kata.Pillars,
		Difficulty: hint.Difficulty,
		Source:     source,
		Abandoned:  abandoned,
	}, nil
}

func (i *Interactor) Resume(ctx context.Context, slug string) (sessiondto.SessionOutput, error) {
	if _, err := i.katas.Get(ctx, slug); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.transition(ctx, "session resumed", slug, i.svc.Resume)
}

func (i *Interactor) BeginWatch(ctx context.Context, slug string) (sessiondto.SessionOutput, error) {
	return i.transition(ctx, "watch started", slug, i.svc.BeginWatch)
}

func (i *Interactor) EndWatch(ctx context.Context, slug string) (sessiondto.SessionOutput, error) {
	return i.transition(ctx, "watch ended", slug, i.svc.EndWatch)
}

func (i *Interactor) transition(ctx context.Context, msg, slug string, step func(*progressdomain.Profile, string) (progressdomain.SessionRecord, error)) (sessiondto.SessionOutput, error) {
	var rec progressdomain.SessionRecord
	if _, err := i.store.Update(ctx, func(p *progressdomain.Profile) error {
		target, err := resolveSlug(*p, slug)
		if err != nil {
			return err
		}
		rec, err = step(p, target)
		return err
	}); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	i.log.Info(msg, zap.String("kata", rec.KataSlug), zap.String("status", string(rec.Status)))
	return toSessionOutput(rec), nil
}

func (i *Interactor) RecordVerdict(ctx context.Context, input sessiondto.VerdictInput) (sessiondto.RecordOutput, error) {
	verdict := domain.Verdict{Kind: domain.VerdictKind(input.Kind), Duration: input.Duration}
	for _, f := range input.Failures {
		verdict.Failures = append(verdict.Failures, describeFailure(f))
	}
	out, err := i.apply(ctx, input.KataSlug, func(p *progressdomain.Profile, slug string) (service.Outcome, error) {
		return i.svc.RecordVerdict(p, slug, verdict)
	})
	if err != nil {
		return sessiondto.RecordOutput{}, err
	}
	fields := []zap.Field{zap.String("kata", out.Session.KataSlug), zap.String("verdict", input.Kind), zap.String("status", out.Session.Status)}
	if out.Entry != nil {
		fields = append(fields, zap.String("tier", out.Entry.QualityTier), zap.Int("xp", out.Entry.XPAwarded))
	}
	i.log.Info("verdict recorded", fields...)
	return out, nil
}

func (i *Interactor) ManualLog(ctx context.Context, input sessiondto.LogInput) (sessiondto.RecordOutput, error) {
	if strings.TrimSpace(input.KataSlug) == "" {
		return sessiondto.RecordOutput{}, fmt.Errorf("%w: kata slug is required", apperrors.ErrInvalidInput)
	}
	out, err := i.apply(ctx, input.KataSlug, func(p *progressdomain.Profile, slug string) (service.Outcome, error) {
		return i.svc.ManualLog(p, slug, input.Note)
	})
	if err != nil {
		return sessiondto.RecordOutput{}, err
	}
	i.log.Info("manual log", zap.String("kata", input.KataSlug), zap.Bool("verified", out.Entry.Verified), zap.Int("xp", out.Entry.XPAwarded))
	return out, nil
}

// apply runs a profile step in one store update and mirrors any new entry
// into the journal afterwards.
func (i *Interactor) apply(ctx context.Context, slug string, step func(*progressdomain.Profile, string) (service.Outcome, error)) (sessiondto.RecordOutput, error) {
	var (
		outcome service.Outcome
		before  map[string]int
	)
	updated, err := i.store.Update(ctx, func(p *progressdomain.Profile) error {
		target, err := resolveSlug(*p, slug)
		if err != nil {
			return err
		}
		before = make(map[string]int, len(p.XPByPillar))
		for k, v := range p.XPByPillar {
			before[k] = v
		}
		outcome, err = step(p, target)
		return err
	})
	if err != nil {
		return sessiondto.RecordOutput{}, err
	}
	out := sessiondto.RecordOutput{Session: toSessionOutput(outcome.Session)}
	if outcome.Entry == nil {
		return out, nil
	}
	entry := toEntryOutput(*outcome.Entry)
	out.Entry = &entry
	for _, pillar := range outcome.Entry.Pillars {
		from, to := i.progression.LevelFor(before[pillar]), i.progression.LevelFor(updated.XPByPillar[pillar])
		if from != to {
			out.LevelUps = append(out.LevelUps, sessiondto.LevelUp{Pillar: pillar, From: from, To: to})
		}
	}
	if i.journal != nil {
		if err := i.journal.Record(ctx, outcome.Session.Workspace, *outcome.Entry); err != nil {
			i.log.Warn("journal write failed", zap.String("kata", outcome.Session.KataSlug), zap.Error(err))
		}
	}
	return out, nil
}

func (i *Interactor) Abandon(ctx context.Context) (sessiondto.AbandonOutput, error) {
	closed := ""
	if _, err := i.store.Update(ctx, func(p *progressdomain.Profile) error {
		closed = i.svc.Abandon(p)
		return nil
	}); err != nil {
		return sessiondto.AbandonOutput{}, err
	}
	if closed != "" {
		i.log.Info("session abandoned", zap.String("kata", closed))
	}
	return sessiondto.AbandonOutput{KataSlug: closed, Abandoned: closed != ""}, nil
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.SessionOutput, error) {
	profile, err := i.store.Load(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	rec, ok := profile.Active()
	if !ok || rec.Status == progressdomain.StatusAbandoned {
		return sessiondto.SessionOutput{}, apperrors.ErrNoActiveSession
	}
	return toSessionOutput(rec), nil
}

func (i *Interactor) History(ctx context.Context, slug string) ([]sessiondto.EntryOutput, error) {
	profile, err := i.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := profile.Sessions[slug]; !ok {
		return nil, fmt.Errorf("%w: kata %s has no sessions", apperrors.ErrNotFound, slug)
	}
	out := []sessiondto.EntryOutput{}
	for _, entry := range profile.Recent(0) {
		if entry.KataSlug == slug {
			out = append(out, toEntryOutput(entry))
		}
	}
	return out, nil
}

// resolveSlug falls back to the session holding the active pointer.
func resolveSlug(p progressdomain.Profile, slug string) (string, error) {
	if slug != "" {
		return slug, nil
	}
	rec, ok := p.Active()
	if !ok || rec.Status == progressdomain.StatusAbandoned {
		return "", apperrors.ErrNoActiveSession
	}
	return rec.KataSlug, nil
}

// splitIdea reads "Title -- mission" ideas. Without a separator the idea is
// both the title and the mission.
func splitIdea(idea string) (string, string) {
	title, mission, found := strings.Cut(idea, " -- ")
	if !found {
		return idea, idea
	}
	title, mission = strings.TrimSpace(title), strings.TrimSpace(mission)
	if mission == "" {
		mission = title
	}
	return title, mission
}

func describeFailure(f sessiondto.FailureInput) string {
	if f.Message == "" {
		return f.Name
	}
	return f.Name + ": " + f.Message
}

func toSessionOutput(rec progressdomain.SessionRecord) sessiondto.SessionOutput {
	out := sessiondto.SessionOutput{
		ID:         rec.ID,
		KataSlug:   rec.KataSlug,
		Workspace:  rec.Workspace,
		Pillars:    append([]string(nil), rec.Pillars...),
		Status:     string(rec.Status),
		OpenedAt:   rec.OpenedAt,
		UpdatedAt:  rec.UpdatedAt,
		FailedRuns: rec.FailedRuns,
		PassCount:  rec.PassCount,
		Logged:     rec.Logged,
	}
	if rec.LastVerdict != nil {
		out.LastVerdict = rec.LastVerdict.Kind
	}
	return out
}

func toEntryOutput(entry progressdomain.LogEntry) sessiondto.EntryOutput {
	return sessiondto.EntryOutput{
		ID:          entry.ID,
		KataSlug:    entry.KataSlug,
		Timestamp:   entry.Timestamp,
		Note:        entry.Note,
		QualityTier: entry.QualityTier,
		Verified:    entry.Verified,
		Completion:  entry.Completion,
		Pillars:     append([]string(nil), entry.Pillars...),
		XPAwarded:   entry.XPAwarded,
	}
}
