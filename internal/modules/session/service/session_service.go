package service

import (
	"fmt"
	"time"

	progressdomain "dojo/internal/modules/progress/domain"
	progressiondto "dojo/internal/modules/progression/dto"
	progressionin "dojo/internal/modules/progression/port/in"
	"dojo/internal/modules/session/domain"
	"dojo/internal/platform/clock"
	apperrors "dojo/internal/platform/errors"
	"dojo/internal/platform/id"
)

// Outcome is the result of one lifecycle step applied to a profile.
type Outcome struct {
	Session progressdomain.SessionRecord
	Entry   *progressdomain.LogEntry
}

// SessionService applies lifecycle rules to a profile document. Every method
// mutates p in place and is meant to run inside a single store update.
type SessionService struct {
	clock       clock.Clock
	idGen       id.Generator
	progression progressionin.Usecase
}

func NewSessionService(clock clock.Clock, idGen id.Generator, progression progressionin.Usecase) *SessionService {
	return &SessionService{clock: clock, idGen: idGen, progression: progression}
}

// Open creates a fresh Active session for a kata and claims the active slot.
// With force, the current holder is abandoned first.
func (s *SessionService) Open(p *progressdomain.Profile, slug, workspace string, pillars []string, force bool) (Outcome, string, error) {
	if slug == "" {
		return Outcome{}, "", fmt.Errorf("%w: kata slug is required", apperrors.ErrInvalidInput)
	}
	now := s.clock.Now()
	abandoned := ""
	if force {
		abandoned = domain.Abandon(p, now)
	}
	if err := domain.CheckSlot(*p, slug); err != nil {
		return Outcome{}, "", err
	}
	rec := progressdomain.SessionRecord{
		ID:        s.idGen.New(),
		KataSlug:  slug,
		Workspace: workspace,
		Pillars:   append([]string(nil), pillars...),
		Status:    progressdomain.StatusActive,
		OpenedAt:  now,
		UpdatedAt: now,
	}
	p.Sessions[slug] = rec
	p.ActiveSlug = slug
	return Outcome{Session: rec}, abandoned, nil
}

// RecordVerdict folds one test run into the session. The first pass of a
// session that has not been logged yet produces its only completion entry. A
// failure re-arms a Passed session only if the active slot is free for it.
func (s *SessionService) RecordVerdict(p *progressdomain.Profile, slug string, verdict domain.Verdict) (Outcome, error) {
	if err := verdict.Kind.Validate(); err != nil {
		return Outcome{}, err
	}
	rec, err := domain.Lookup(*p, slug)
	if err != nil {
		return Outcome{}, err
	}
	now := s.clock.Now()
	rec.LastVerdict = verdict.Summary()
	rec.UpdatedAt = now

	if verdict.Kind != domain.VerdictPassed {
		rec.FailedRuns++
		rec = domain.Reopen(p, rec, progressdomain.StatusWatching)
		p.Sessions[slug] = rec
		return Outcome{Session: rec}, nil
	}

	rec.PassCount++
	rec.Status = progressdomain.StatusPassed
	out := Outcome{}
	if !rec.Logged {
		award := s.progression.Award(progressiondto.AwardInput{FailedRuns: rec.FailedRuns, Verified: true})
		entry := s.entry(rec, now, domain.AutoLogNote, award, true)
		entry.VerdictSummary = rec.LastVerdict
		if _, err := p.Apply(entry); err != nil {
			return Outcome{}, err
		}
		rec.Logged = true
		out.Entry = &entry
	}
	p.Sessions[slug] = rec
	out.Session = rec
	return out, nil
}

// ManualLog records a note for a started kata. A session that never logged
// earns its completion here, unverified unless a pass was seen. A logged
// session gets a reflection entry worth no XP and a Passed session reopens
// when the active slot is free.
func (s *SessionService) ManualLog(p *progressdomain.Profile, slug, note string) (Outcome, error) {
	note, err := domain.NormalizeNote(note)
	if err != nil {
		return Outcome{}, err
	}
	rec, ok := p.Sessions[slug]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: kata %s has no started session", apperrors.ErrNotFound, slug)
	}
	now := s.clock.Now()
	var entry progressdomain.LogEntry
	if !rec.Logged {
		verified := rec.PassCount > 0
		award := s.progression.Award(progressiondto.AwardInput{FailedRuns: rec.FailedRuns, Verified: verified})
		entry = s.entry(rec, now, note, award, verified)
		rec.Logged = true
	} else {
		entry = s.entry(rec, now, note, progressiondto.AwardOutput{}, rec.PassCount > 0)
		entry.Completion = false
		rec = domain.Reopen(p, rec, progressdomain.StatusActive)
	}
	entry.VerdictSummary = rec.LastVerdict
	if _, err := p.Apply(entry); err != nil {
		return Outcome{}, err
	}
	rec.UpdatedAt = now
	p.Sessions[slug] = rec
	return Outcome{Session: rec, Entry: &entry}, nil
}

func (s *SessionService) Abandon(p *progressdomain.Profile) string {
	return domain.Abandon(p, s.clock.Now())
}

func (s *SessionService) Resume(p *progressdomain.Profile, slug string) (progressdomain.SessionRecord, error) {
	return domain.Resume(p, slug, s.clock.Now())
}

func (s *SessionService) BeginWatch(p *progressdomain.Profile, slug string) (progressdomain.SessionRecord, error) {
	return domain.BeginWatch(p, slug, s.clock.Now())
}

func (s *SessionService) EndWatch(p *progressdomain.Profile, slug string) (progressdomain.SessionRecord, error) {
	return domain.EndWatch(p, slug, s.clock.Now())
}

func (s *SessionService) entry(rec progressdomain.SessionRecord, now time.Time, note string, award progressiondto.AwardOutput, verified bool) progressdomain.LogEntry {
	return progressdomain.LogEntry{
		ID:          s.idGen.New(),
		KataSlug:    rec.KataSlug,
		SessionID:   rec.ID,
		Timestamp:   now,
		Note:        note,
		QualityTier: award.Tier,
		Verified:    verified,
		Completion:  true,
		Pillars:     append([]string(nil), rec.Pillars...),
		XPAwarded:   award.XP,
	}
}
