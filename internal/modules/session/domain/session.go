package domain

import (
	"fmt"
	"strings"
	"time"

	progressdomain "dojo/internal/modules/progress/domain"
	apperrors "dojo/internal/platform/errors"
)

const (
	AutoLogNote = "Tests passed (watch mode auto-log)"
	ManualNote  = "Logged manually"
)

type VerdictKind string

const (
	VerdictPassed  VerdictKind = "passed"
	VerdictFailed  VerdictKind = "failed"
	VerdictTimeout VerdictKind = "timeout"
	VerdictCrash   VerdictKind = "crash"
)

func (k VerdictKind) Validate() error {
	switch k {
	case VerdictPassed, VerdictFailed, VerdictTimeout, VerdictCrash:
		return nil
	default:
		return fmt.Errorf("%w: unknown verdict kind %q", apperrors.ErrInvalidInput, k)
	}
}

type Verdict struct {
	Kind     VerdictKind
	Failures []string
	Duration time.Duration
}

func (v Verdict) Summary() *progressdomain.VerdictSummary {
	return &progressdomain.VerdictSummary{
		Kind:       string(v.Kind),
		Failures:   append([]string(nil), v.Failures...),
		DurationMS: v.Duration.Milliseconds(),
	}
}

// CheckSlot fails when a session other than slug holds the active slot.
func CheckSlot(p progressdomain.Profile, slug string) error {
	current, ok := p.Active()
	if !ok || !current.Status.Open() || current.KataSlug == slug {
		return nil
	}
	return fmt.Errorf("%w: %s is %s", apperrors.ErrActiveSessionExists, current.KataSlug, current.Status)
}

// Abandon closes the session holding the active slot. It reports the slug it
// closed, or "" when nothing was open.
func Abandon(p *progressdomain.Profile, now time.Time) string {
	current, ok := p.Active()
	if !ok {
		p.ActiveSlug = ""
		return ""
	}
	if !current.Status.Open() {
		return ""
	}
	current.Status = progressdomain.StatusAbandoned
	current.UpdatedAt = now
	p.Sessions[current.KataSlug] = current
	p.ActiveSlug = ""
	return current.KataSlug
}

// Lookup returns the last session of slug unless it is missing or abandoned.
func Lookup(p progressdomain.Profile, slug string) (progressdomain.SessionRecord, error) {
	rec, ok := p.Sessions[slug]
	if !ok {
		return progressdomain.SessionRecord{}, fmt.Errorf("%w: no session for kata %s", apperrors.ErrNotFound, slug)
	}
	if rec.Status == progressdomain.StatusAbandoned {
		return progressdomain.SessionRecord{}, fmt.Errorf("%w: session for kata %s was abandoned", apperrors.ErrNotFound, slug)
	}
	return rec, nil
}

// Resume re-enters Active for slug and claims the active slot. Logged is kept
// so a resumed kata never earns a second completion.
func Resume(p *progressdomain.Profile, slug string, now time.Time) (progressdomain.SessionRecord, error) {
	rec, err := Lookup(*p, slug)
	if err != nil {
		return progressdomain.SessionRecord{}, err
	}
	if err := CheckSlot(*p, slug); err != nil {
		return progressdomain.SessionRecord{}, err
	}
	rec.Status = progressdomain.StatusActive
	rec.UpdatedAt = now
	p.Sessions[slug] = rec
	p.ActiveSlug = slug
	return rec, nil
}

// BeginWatch moves an Active or Passed session to Watching.
func BeginWatch(p *progressdomain.Profile, slug string, now time.Time) (progressdomain.SessionRecord, error) {
	rec, err := Lookup(*p, slug)
	if err != nil {
		return progressdomain.SessionRecord{}, err
	}
	if err := CheckSlot(*p, slug); err != nil {
		return progressdomain.SessionRecord{}, err
	}
	rec.Status = progressdomain.StatusWatching
	rec.UpdatedAt = now
	p.Sessions[slug] = rec
	p.ActiveSlug = slug
	return rec, nil
}

// Reopen moves a Passed session back to status and claims the active slot.
// While another open session holds the slot the record stays Passed.
func Reopen(p *progressdomain.Profile, rec progressdomain.SessionRecord, status progressdomain.Status) progressdomain.SessionRecord {
	if rec.Status != progressdomain.StatusPassed || CheckSlot(*p, rec.KataSlug) != nil {
		return rec
	}
	rec.Status = status
	p.ActiveSlug = rec.KataSlug
	return rec
}

// EndWatch returns a Watching session to Active. Other states are kept.
func EndWatch(p *progressdomain.Profile, slug string, now time.Time) (progressdomain.SessionRecord, error) {
	rec, err := Lookup(*p, slug)
	if err != nil {
		return progressdomain.SessionRecord{}, err
	}
	if rec.Status == progressdomain.StatusWatching {
		rec.Status = progressdomain.StatusActive
		rec.UpdatedAt = now
		p.Sessions[slug] = rec
	}
	return rec, nil
}

func NormalizeNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return "", fmt.Errorf("%w: note is required", apperrors.ErrInvalidInput)
	}
	return note, nil
}
