package domain_test

import (
	"errors"
	"testing"
	"time"

	progressdomain "dojo/internal/modules/progress/domain"
	"dojo/internal/modules/session/domain"
	apperrors "dojo/internal/platform/errors"
)

func profileWith(slug string, status progressdomain.Status) progressdomain.Profile {
	p := progressdomain.NewProfile()
	p.Sessions[slug] = progressdomain.SessionRecord{ID: "s1", KataSlug: slug, Status: status}
	p.ActiveSlug = slug
	return p
}

func TestCheckSlot(t *testing.T) {
	t.Parallel()
	open := profileWith("age-calculator", progressdomain.StatusWatching)
	if err := domain.CheckSlot(open, "age-calculator"); err != nil {
		t.Fatalf("same kata must not conflict: %v", err)
	}
	if err := domain.CheckSlot(open, "todo-cli"); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := domain.CheckSlot(profileWith("age-calculator", progressdomain.StatusPassed), "todo-cli"); err != nil {
		t.Fatalf("passed session must not hold the slot: %v", err)
	}
}

func TestAbandonOnlyClosesOpenSessions(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := profileWith("age-calculator", progressdomain.StatusActive)
	if got := domain.Abandon(&p, now); got != "age-calculator" {
		t.Fatalf("abandoned = %q", got)
	}
	if p.ActiveSlug != "" || p.Sessions["age-calculator"].Status != progressdomain.StatusAbandoned {
		t.Fatalf("unexpected profile %+v", p)
	}
	passed := profileWith("todo-cli", progressdomain.StatusPassed)
	if got := domain.Abandon(&passed, now); got != "" || passed.Sessions["todo-cli"].Status != progressdomain.StatusPassed {
		t.Fatalf("passed session must be left alone, got %q", got)
	}
}

func TestEndWatchOnlyLeavesWatching(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := profileWith("age-calculator", progressdomain.StatusWatching)
	rec, err := domain.EndWatch(&p, "age-calculator", now)
	if err != nil || rec.Status != progressdomain.StatusActive {
		t.Fatalf("end watch: %+v %v", rec, err)
	}
	p = profileWith("age-calculator", progressdomain.StatusPassed)
	rec, _ = domain.EndWatch(&p, "age-calculator", now)
	if rec.Status != progressdomain.StatusPassed {
		t.Fatalf("passed session changed to %s", rec.Status)
	}
	if _, err := domain.EndWatch(&p, "ghost", now); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVerdictKindValidation(t *testing.T) {
	t.Parallel()
	if err := domain.VerdictKind("flaky").Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	summary := domain.Verdict{Kind: domain.VerdictTimeout, Duration: 1500 * time.Millisecond}.Summary()
	if summary.Kind != "timeout" || summary.DurationMS != 1500 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestReopenRespectsActiveSlot(t *testing.T) {
	t.Parallel()
	p := profileWith("age-calculator", progressdomain.StatusPassed)
	rec := domain.Reopen(&p, p.Sessions["age-calculator"], progressdomain.StatusWatching)
	if rec.Status != progressdomain.StatusWatching || p.ActiveSlug != "age-calculator" {
		t.Fatalf("free slot should reopen: %+v active=%q", rec, p.ActiveSlug)
	}

	p = profileWith("todo-cli", progressdomain.StatusActive)
	p.Sessions["age-calculator"] = progressdomain.SessionRecord{ID: "s2", KataSlug: "age-calculator", Status: progressdomain.StatusPassed}
	rec = domain.Reopen(&p, p.Sessions["age-calculator"], progressdomain.StatusActive)
	if rec.Status != progressdomain.StatusPassed || p.ActiveSlug != "todo-cli" {
		t.Fatalf("held slot must keep the record passed: %+v active=%q", rec, p.ActiveSlug)
	}
}
