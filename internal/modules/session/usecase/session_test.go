package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	generatordto "dojo/internal/modules/generator/dto"
	kataout "dojo/internal/modules/kata/adapter/out"
	kataservice "dojo/internal/modules/kata/service"
	katausecase "dojo/internal/modules/kata/usecase"
	progressout "dojo/internal/modules/progress/adapter/out"
	progressdomain "dojo/internal/modules/progress/domain"
	progressport "dojo/internal/modules/progress/port/out"
	progressionusecase "dojo/internal/modules/progression/usecase"
	sessiondto "dojo/internal/modules/session/dto"
	sessionin "dojo/internal/modules/session/port/in"
	"dojo/internal/modules/session/service"
	"dojo/internal/modules/session/usecase"
	"dojo/internal/platform/config"
	apperrors "dojo/internal/platform/errors"
	"dojo/internal/platform/tx"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.now = f.now.Add(time.Minute)
	return f.now
}

type fakeID struct {
	n int
}

func (f *fakeID) New() string {
	f.n++
	return fmt.Sprintf("id-%d", f.n)
}

type fakeGenerator struct {
	err error
}

func (g fakeGenerator) Generate(_ context.Context, in generatordto.GenerateInput) (generatordto.ExerciseOutput, error) {
	if g.err != nil {
		return generatordto.ExerciseOutput{}, g.err
	}
	return generatordto.ExerciseOutput{Title: "Todo CLI", Mission: "Track tasks for " + in.Pillar, Source: "offline"}, nil
}
func (fakeGenerator) Diagnose(context.Context, generatordto.DiagnoseInput) (generatordto.HintOutput, error) {
	return generatordto.HintOutput{}, nil
}
func (fakeGenerator) Doctor(context.Context) ([]generatordto.DoctorResult, error) { return nil, nil }

type fixture struct {
	uc       sessionin.Usecase
	store    progressport.Store
	kataRoot string
}

func newFixture(t *testing.T, gen fakeGenerator) fixture {
	t.Helper()
	kataRoot, notesRoot := t.TempDir(), t.TempDir()
	clk := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	policy, err := progressionusecase.PolicyFromConfig(config.Default().Progression)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	progression := progressionusecase.NewInteractor(policy)
	store := progressout.NewFileStore(filepath.Join(notesRoot, ".dojo", "progress.json"), tx.NoopManager{}, clk)
	katas := katausecase.NewInteractor(kataservice.NewKataService(clk, kataout.NewVaultKataStore(kataRoot), nil, nil))
	uc := usecase.NewInteractor(usecase.Dependencies{
		Service:     service.NewSessionService(clk, &fakeID{}, progression),
		Store:       store,
		Journal:     progressout.NewMarkdownJournal(notesRoot),
		Katas:       katas,
		Generator:   gen,
		Progression: progression,
	})
	return fixture{uc: uc, store: store, kataRoot: kataRoot}
}

func (h fixture) profile(t *testing.T) progressdomain.Profile {
	t.Helper()
	p, err := h.store.Load(context.Background())
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	return p
}

func passed() sessiondto.VerdictInput {
	return sessiondto.VerdictInput{Kind: "passed", Duration: 120 * time.Millisecond}
}

func failed(name, msg string) sessiondto.VerdictInput {
	return sessiondto.VerdictInput{Kind: "failed", Failures: []sessiondto.FailureInput{{Name: name, Message: msg}}}
}

func TestAgeCalculatorPassesOnFirstSave(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	ctx := context.Background()

	start, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Age Calculator -- Compute age in whole years", Pillar: "python-fundamentals"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if start.KataSlug != "age-calculator" || start.Difficulty != "foundation" {
		t.Fatalf("unexpected start: %+v", start)
	}
	if _, err := h.uc.BeginWatch(ctx, ""); err != nil {
		t.Fatalf("begin watch: %v", err)
	}

	out, err := h.uc.RecordVerdict(ctx, passed())
	if err != nil {
		t.Fatalf("record pass: %v", err)
	}
	if out.Entry == nil || out.Entry.QualityTier != "first-try" || out.Entry.XPAwarded != 25 {
		t.Fatalf("expected a first-try entry worth 25 xp, got %+v", out.Entry)
	}
	if out.Session.Status != "passed" || !out.Session.Logged {
		t.Fatalf("unexpected session after pass: %+v", out.Session)
	}

	again, err := h.uc.RecordVerdict(ctx, passed())
	if err != nil {
		t.Fatalf("record repeated pass: %v", err)
	}
	if again.Entry != nil {
		t.Fatalf("repeated pass must not create an entry")
	}

	p := h.profile(t)
	if len(p.Log) != 1 || p.CompletedCount != 1 || p.XPByPillar["python-fundamentals"] != 25 {
		t.Fatalf("unexpected profile: log=%d completed=%d xp=%v", len(p.Log), p.CompletedCount, p.XPByPillar)
	}
	journal, err := os.ReadFile(filepath.Join(start.Workspace, "LOG.md"))
	if err != nil {
		t.Fatalf("read workspace journal: %v", err)
	}
	if !strings.Contains(string(journal), "first-try, +25 xp") {
		t.Fatalf("journal missing award line: %s", journal)
	}
}

func TestAgeCalculatorPassesAfterFailure(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	ctx := context.Background()
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Age Calculator", Pillar: "python-fundamentals"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := h.uc.BeginWatch(ctx, "age-calculator"); err != nil {
		t.Fatalf("begin watch: %v", err)
	}

	first, err := h.uc.RecordVerdict(ctx, failed("test_leap_day", "AssertionError: 3 != 4"))
	if err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if first.Entry != nil || first.Session.Status != "watching" || first.Session.FailedRuns != 1 {
		t.Fatalf("unexpected session after failure: %+v", first)
	}
	second, err := h.uc.RecordVerdict(ctx, passed())
	if err != nil {
		t.Fatalf("record pass: %v", err)
	}
	if second.Entry == nil || second.Entry.QualityTier != "after-failures" || second.Entry.XPAwarded != 15 {
		t.Fatalf("expected an after-failures entry worth 15 xp, got %+v", second.Entry)
	}

	p := h.profile(t)
	if len(p.Log) != 1 || p.XPByPillar["python-fundamentals"] != 15 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if got := p.Sessions["age-calculator"].LastVerdict; got == nil || got.Kind != "passed" {
		t.Fatalf("last verdict = %+v", got)
	}
}

func TestFailureAfterPassRearmsWithoutSecondAward(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	ctx := context.Background()
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Word Count", Pillar: "cli"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := h.uc.BeginWatch(ctx, ""); err != nil {
		t.Fatalf("begin watch: %v", err)
	}
	steps := []sessiondto.VerdictInput{passed(), failed("test_empty", "boom"), passed()}
	var last sessiondto.RecordOutput
	for _, step := range steps {
		var err error
		if last, err = h.uc.RecordVerdict(ctx, step); err != nil {
			t.Fatalf("record %s: %v", step.Kind, err)
		}
	}
	if last.Entry != nil || last.Session.Status != "passed" {
		t.Fatalf("second pass must not award, got %+v", last)
	}
	if p := h.profile(t); len(p.Log) != 1 || p.XPByPillar["cli"] != 25 {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestStartConflictLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	ctx := context.Background()
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Age Calculator", Pillar: "python-fundamentals"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := h.uc.BeginWatch(ctx, ""); err != nil {
		t.Fatalf("begin watch: %v", err)
	}
	before := h.profile(t)

	_, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Bulk Rename", Pillar: "cli"})
	if !errors.Is(err, apperrors.ErrActiveSessionExists) || !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	after := h.profile(t)
	if !reflect.DeepEqual(before.Sessions, after.Sessions) || before.ActiveSlug != after.ActiveSlug {
		t.Fatalf("conflict mutated sessions: before=%+v after=%+v", before.Sessions, after.Sessions)
	}
	if _, err := os.Stat(filepath.Join(h.kataRoot, "bulk-rename")); !os.IsNotExist(err) {
		t.Fatalf("conflicting start must not create a kata, stat err=%v", err)
	}
}

func TestForcedStartAbandonsCurrentSession(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	ctx := context.Background()
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Age Calculator", Pillar: "python-fundamentals"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Bulk Rename", Pillar: "cli", Force: true})
	if err != nil {
		t.Fatalf("forced start: %v", err)
	}
	if out.Abandoned != "age-calculator" {
		t.Fatalf("abandoned = %q", out.Abandoned)
	}
	p := h.profile(t)
	if p.ActiveSlug != "bulk-rename" || p.Sessions["age-calculator"].Status != progressdomain.StatusAbandoned {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if _, err := h.uc.Resume(ctx, "age-calculator"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("resume of abandoned kata should be not found, got %v", err)
	}
}

// claimingStore lets another writer open a session right before each update.
type claimingStore struct {
	progressport.Store
	slug string
}

func (s claimingStore) Update(ctx context.Context, fn func(*progressdomain.Profile) error) (progressdomain.Profile, error) {
	if _, err := s.Store.Update(ctx, func(p *progressdomain.Profile) error {
		p.Sessions[s.slug] = progressdomain.SessionRecord{ID: "other", KataSlug: s.slug, Status: progressdomain.StatusActive}
		p.ActiveSlug = s.slug
		return nil
	}); err != nil {
		return progressdomain.Profile{}, err
	}
	return s.Store.Update(ctx, fn)
}

func TestStartLosingSlotRaceReportsOrphanedKata(t *testing.T) {
	t.Parallel()
	kataRoot, notesRoot := t.TempDir(), t.TempDir()
	clk := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	policy, err := progressionusecase.PolicyFromConfig(config.Default().Progression)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	progression := progressionusecase.NewInteractor(policy)
	store := claimingStore{
		Store: progressout.NewFileStore(filepath.Join(notesRoot, ".dojo", "progress.json"), tx.NoopManager{}, clk),
		slug:  "other-kata",
	}
	core, logs := observer.New(zapcore.WarnLevel)
	uc := usecase.NewInteractor(usecase.Dependencies{
		Service:     service.NewSessionService(clk, &fakeID{}, progression),
		Store:       store,
		Journal:     progressout.NewMarkdownJournal(notesRoot),
		Katas:       katausecase.NewInteractor(kataservice.NewKataService(clk, kataout.NewVaultKataStore(kataRoot), nil, nil)),
		Progression: progression,
		Logger:      zap.New(core),
	})

	_, err = uc.Start(context.Background(), sessiondto.StartInput{Idea: "Age Calculator", Pillar: "python-fundamentals"})
	if !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected conflict, got %v", err)
	}
	warned := logs.FilterMessage("kata created without a session").All()
	if len(warned) != 1 || warned[0].ContextMap()["kata"] != "age-calculator" {
		t.Fatalf("expected one orphan warning, got %+v", logs.All())
	}
	p, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := p.Sessions["age-calculator"]; ok || p.ActiveSlug != "other-kata" {
		t.Fatalf("losing start must not open a session: %+v", p)
	}
}

func TestStartWithoutIdeaUsesGeneratorAndWeakestPillar(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	out, err := h.uc.Start(context.Background(), sessiondto.StartInput{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if out.Title != "Todo CLI" || out.Source != "offline" || !reflect.DeepEqual(out.Pillars, []string{"python-fundamentals"}) {
		t.Fatalf("unexpected start: %+v", out)
	}
}

func TestStartWithoutIdeaFailsWhenGeneratorUnavailable(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{err: apperrors.Unavailable("content generator", errors.New("offline"))})
	_, err := h.uc.Start(context.Background(), sessiondto.StartInput{})
	if !errors.Is(err, apperrors.ErrCollaboratorUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if p := h.profile(t); len(p.Sessions) != 0 {
		t.Fatalf("failed start must not open a session: %+v", p.Sessions)
	}
}

func TestResumeRules(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	ctx := context.Background()
	if _, err := h.uc.Resume(ctx, "ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("resume unknown kata: %v", err)
	}
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Age Calculator", Pillar: "python-fundamentals"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := h.uc.BeginWatch(ctx, ""); err != nil {
		t.Fatalf("begin watch: %v", err)
	}
	if _, err := h.uc.RecordVerdict(ctx, passed()); err != nil {
		t.Fatalf("record pass: %v", err)
	}
	resumed, err := h.uc.Resume(ctx, "age-calculator")
	if err != nil {
		t.Fatalf("resume passed kata: %v", err)
	}
	if resumed.Status != "active" || !resumed.Logged {
		t.Fatalf("resume should reopen and keep logged: %+v", resumed)
	}
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Shortlink API", Pillar: "api", Force: true}); err != nil {
		t.Fatalf("forced start: %v", err)
	}
	if _, err := h.uc.Abandon(ctx); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if _, err := h.uc.Resume(ctx, "shortlink-api"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("resume abandoned: %v", err)
	}
}

func TestManualLogWithoutPassIsUnverified(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	ctx := context.Background()
	if _, err := h.uc.ManualLog(ctx, sessiondto.LogInput{KataSlug: "ghost", Note: "done"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("log unknown kata: %v", err)
	}
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Notes API", Pillar: "api"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := h.uc.ManualLog(ctx, sessiondto.LogInput{KataSlug: "notes-api", Note: "  "}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("empty note: %v", err)
	}
	out, err := h.uc.ManualLog(ctx, sessiondto.LogInput{KataSlug: "notes-api", Note: "Built CRUD by hand"})
	if err != nil {
		t.Fatalf("manual log: %v", err)
	}
	if out.Entry.QualityTier != "unverified" || out.Entry.Verified || out.Entry.XPAwarded != 10 || !out.Entry.Completion {
		t.Fatalf("unexpected entry: %+v", out.Entry)
	}

	reflection, err := h.uc.ManualLog(ctx, sessiondto.LogInput{KataSlug: "notes-api", Note: "Refactored handlers"})
	if err != nil {
		t.Fatalf("reflection log: %v", err)
	}
	if reflection.Entry.XPAwarded != 0 || reflection.Entry.Completion {
		t.Fatalf("second log must be a reflection: %+v", reflection.Entry)
	}
	p := h.profile(t)
	if p.CompletedCount != 1 || p.XPByPillar["api"] != 10 || len(p.Log) != 2 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	history, err := h.uc.History(ctx, "notes-api")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].Note != "Refactored handlers" {
		t.Fatalf("history should list newest first: %+v", history)
	}
}

func TestManualLogReopensPassedSession(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	ctx := context.Background()
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Config Loader", Pillar: "python-fundamentals"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := h.uc.RecordVerdict(ctx, passed()); err != nil {
		t.Fatalf("record pass: %v", err)
	}
	out, err := h.uc.ManualLog(ctx, sessiondto.LogInput{KataSlug: "config-loader", Note: "Handled missing keys"})
	if err != nil {
		t.Fatalf("manual log: %v", err)
	}
	if out.Session.Status != "active" || !out.Entry.Verified {
		t.Fatalf("unexpected log outcome: %+v", out)
	}
}

func openSessions(p progressdomain.Profile) []string {
	var open []string
	for slug, rec := range p.Sessions {
		if rec.Status.Open() {
			open = append(open, slug)
		}
	}
	return open
}

// passThenStartOther leaves alpha Passed and beta holding the active slot.
func passThenStartOther(t *testing.T, h fixture) {
	t.Helper()
	ctx := context.Background()
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Alpha", Pillar: "cli"}); err != nil {
		t.Fatalf("start alpha: %v", err)
	}
	if _, err := h.uc.RecordVerdict(ctx, passed()); err != nil {
		t.Fatalf("record pass: %v", err)
	}
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Beta", Pillar: "api"}); err != nil {
		t.Fatalf("start beta: %v", err)
	}
}

func TestManualLogOnPassedKataKeepsOtherSessionActive(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	passThenStartOther(t, h)

	out, err := h.uc.ManualLog(context.Background(), sessiondto.LogInput{KataSlug: "alpha", Note: "Looked back at parsing"})
	if err != nil {
		t.Fatalf("manual log: %v", err)
	}
	if out.Session.Status != "passed" || out.Entry == nil || out.Entry.XPAwarded != 0 {
		t.Fatalf("reflection must leave alpha passed: %+v", out)
	}
	p := h.profile(t)
	if open := openSessions(p); len(open) != 1 || open[0] != "beta" || p.ActiveSlug != "beta" {
		t.Fatalf("expected only beta open, got open=%v active=%q", open, p.ActiveSlug)
	}
}

func TestFailureOnPassedKataKeepsOtherSessionActive(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	passThenStartOther(t, h)

	in := failed("test_alpha", "boom")
	in.KataSlug = "alpha"
	out, err := h.uc.RecordVerdict(context.Background(), in)
	if err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if out.Session.Status != "passed" || out.Session.FailedRuns != 1 {
		t.Fatalf("failure must be counted without reopening alpha: %+v", out.Session)
	}
	p := h.profile(t)
	if open := openSessions(p); len(open) != 1 || open[0] != "beta" || p.ActiveSlug != "beta" {
		t.Fatalf("expected only beta open, got open=%v active=%q", open, p.ActiveSlug)
	}
}

func TestFailureRearmsPassedKataWhenSlotIsFree(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	ctx := context.Background()
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Alpha", Pillar: "cli"}); err != nil {
		t.Fatalf("start alpha: %v", err)
	}
	if _, err := h.uc.RecordVerdict(ctx, passed()); err != nil {
		t.Fatalf("record pass: %v", err)
	}
	out, err := h.uc.RecordVerdict(ctx, failed("test_alpha", "boom"))
	if err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if out.Session.Status != "watching" {
		t.Fatalf("expected alpha watching again, got %+v", out.Session)
	}
	if p := h.profile(t); p.ActiveSlug != "alpha" {
		t.Fatalf("active slug = %q", p.ActiveSlug)
	}
}

func TestAbandonIsIdempotent(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	ctx := context.Background()
	if out, err := h.uc.Abandon(ctx); err != nil || out.Abandoned {
		t.Fatalf("abandon with nothing open: %+v %v", out, err)
	}
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: "Log Filter", Pillar: "cli"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	first, err := h.uc.Abandon(ctx)
	if err != nil || !first.Abandoned || first.KataSlug != "log-filter" {
		t.Fatalf("first abandon: %+v %v", first, err)
	}
	second, err := h.uc.Abandon(ctx)
	if err != nil || second.Abandoned {
		t.Fatalf("second abandon: %+v %v", second, err)
	}
	if _, err := h.uc.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}
}

func TestXPNeverDecreases(t *testing.T) {
	t.Parallel()
	h := newFixture(t, fakeGenerator{})
	ctx := context.Background()
	previous := map[string]int{}
	check := func(step string) {
		t.Helper()
		p := h.profile(t)
		for pillar, xp := range previous {
			if p.XPByPillar[pillar] < xp {
				t.Fatalf("%s: xp for %s dropped from %d to %d", step, pillar, xp, p.XPByPillar[pillar])
			}
		}
		previous = p.XPByPillar
	}
	ideas := []string{"Todo CLI", "Log Filter", "Bulk Rename"}
	for _, idea := range ideas {
		if _, err := h.uc.Start(ctx, sessiondto.StartInput{Idea: idea, Pillar: "cli", Force: true}); err != nil {
			t.Fatalf("start %s: %v", idea, err)
		}
		check("start")
		_, _ = h.uc.RecordVerdict(ctx, failed("test_x", "nope"))
		check("fail")
		_, _ = h.uc.RecordVerdict(ctx, passed())
		check("pass")
		_, _ = h.uc.ManualLog(ctx, sessiondto.LogInput{Note: "reflection", KataSlug: "todo-cli"})
		check("log")
		_, _ = h.uc.Abandon(ctx)
		check("abandon")
	}
	if previous["cli"] != 15*3 {
		t.Fatalf("expected three after-failures awards, got %d", previous["cli"])
	}
}
