package domain

import (
	"fmt"
	"time"
)

const SchemaVersion = 1

type Status string

const (
	StatusActive    Status = "active"
	StatusWatching  Status = "watching"
	StatusPassed    Status = "passed"
	StatusAbandoned Status = "abandoned"
)

// Open reports whether the status holds the single active session slot.
func (s Status) Open() bool {
	return s == StatusActive || s == StatusWatching
}

type VerdictSummary struct {
	Kind       string   `json:"kind"`
	Failures   []string `json:"failures,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

type SessionRecord struct {
	ID          string          `json:"id"`
	KataSlug    string          `json:"kata_slug"`
	Workspace   string          `json:"workspace"`
	Pillars     []string        `json:"pillars"`
	Status      Status          `json:"status"`
	OpenedAt    time.Time       `json:"opened_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	LastVerdict *VerdictSummary `json:"last_verdict,omitempty"`
	FailedRuns  int             `json:"failed_runs"`
	PassCount   int             `json:"pass_count"`
	Logged      bool            `json:"logged"`
}

type LogEntry struct {
	ID             string          `json:"id"`
	KataSlug       string          `json:"kata_slug"`
	SessionID      string          `json:"session_id"`
	Timestamp      time.Time       `json:"timestamp"`
	Note           string          `json:"note,omitempty"`
	VerdictSummary *VerdictSummary `json:"verdict,omitempty"`
	QualityTier    string          `json:"quality_tier"`
	Verified       bool            `json:"verified"`
	Completion     bool            `json:"completion"`
	Pillars        []string        `json:"pillars"`
	XPAwarded      int             `json:"xp_awarded"`
}

// Profile is the whole persisted document. Levels are never stored; they are
// derived from XPByPillar when read.
type Profile struct {
	SchemaVersion  int                      `json:"schema_version"`
	XPByPillar     map[string]int           `json:"xp_by_pillar"`
	CompletedCount int                      `json:"completed_count"`
	ActiveSlug     string                   `json:"active_slug,omitempty"`
	Sessions       map[string]SessionRecord `json:"sessions"`
	Log            []LogEntry               `json:"log"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

func NewProfile() Profile {
	return Profile{
		SchemaVersion: SchemaVersion,
		XPByPillar:    map[string]int{},
		Sessions:      map[string]SessionRecord{},
		Log:           []LogEntry{},
	}
}

// Normalize fills nil collections left by older or hand-edited documents.
func (p *Profile) Normalize() {
	if p.SchemaVersion == 0 {
		p.SchemaVersion = SchemaVersion
	}
	if p.XPByPillar == nil {
		p.XPByPillar = map[string]int{}
	}
	if p.Sessions == nil {
		p.Sessions = map[string]SessionRecord{}
	}
	if p.Log == nil {
		p.Log = []LogEntry{}
	}
}

func (p Profile) Clone() Profile {
	out := p
	out.XPByPillar = make(map[string]int, len(p.XPByPillar))
	for k, v := range p.XPByPillar {
		out.XPByPillar[k] = v
	}
	out.Sessions = make(map[string]SessionRecord, len(p.Sessions))
	for k, v := range p.Sessions {
		out.Sessions[k] = v
	}
	out.Log = append([]LogEntry(nil), p.Log...)
	if out.Log == nil {
		out.Log = []LogEntry{}
	}
	return out
}

// Active returns the session referenced by the active pointer when that
// session is still open.
func (p Profile) Active() (SessionRecord, bool) {
	if p.ActiveSlug == "" {
		return SessionRecord{}, false
	}
	rec, ok := p.Sessions[p.ActiveSlug]
	if !ok {
		return SessionRecord{}, false
	}
	return rec, true
}

func (p Profile) HasEntry(id string) bool {
	for _, entry := range p.Log {
		if entry.ID == id {
			return true
		}
	}
	return false
}

// Apply appends entry and credits its XP to every listed pillar. It returns
// false when an entry with the same ID was already applied.
func (p *Profile) Apply(entry LogEntry) (bool, error) {
	if entry.ID == "" {
		return false, fmt.Errorf("log entry id is required")
	}
	if entry.XPAwarded < 0 {
		return false, fmt.Errorf("log entry xp must not be negative")
	}
	p.Normalize()
	if p.HasEntry(entry.ID) {
		return false, nil
	}
	for _, pillar := range entry.Pillars {
		p.XPByPillar[pillar] += entry.XPAwarded
	}
	if entry.Completion {
		p.CompletedCount++
	}
	p.Log = append(p.Log, entry)
	return true, nil
}

// CheckGrowth rejects a successor document that would lose XP or history.
func (p Profile) CheckGrowth(next Profile) error {
	for pillar, xp := range p.XPByPillar {
		if next.XPByPillar[pillar] < xp {
			return fmt.Errorf("xp for %s would drop from %d to %d", pillar, xp, next.XPByPillar[pillar])
		}
	}
	if next.CompletedCount < p.CompletedCount {
		return fmt.Errorf("completed count would drop from %d to %d", p.CompletedCount, next.CompletedCount)
	}
	if len(next.Log) < len(p.Log) {
		return fmt.Errorf("log history would shrink from %d to %d entries", len(p.Log), len(next.Log))
	}
	return nil
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (p Profile) Recent(limit int) []LogEntry {
	n := len(p.Log)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]LogEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, p.Log[i])
	}
	return out
}
