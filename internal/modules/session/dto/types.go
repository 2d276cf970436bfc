package dto

import "time"

type StartInput struct {
	Idea         string
	TemplateKind string
	Pillar       string
	Force        bool
}

type StartOutput struct {
	SessionID  string
	KataSlug   string
	Title      string
	Mission    string
	Workspace  string
	Pillars    []string
	Difficulty string
	Source     string
	Abandoned  string
}

type SessionOutput struct {
	ID          string
	KataSlug    string
	Workspace   string
	Pillars     []string
	Status      string
	OpenedAt    time.Time
	UpdatedAt   time.Time
	FailedRuns  int
	PassCount   int
	Logged      bool
	LastVerdict string
}

type FailureInput struct {
	Name    string
	Message string
}

type VerdictInput struct {
	KataSlug string
	Kind     string
	Failures []FailureInput
	Duration time.Duration
}

type EntryOutput struct {
	ID          string
	KataSlug    string
	Timestamp   time.Time
	Note        string
	QualityTier string
	Verified    bool
	Completion  bool
	Pillars     []string
	XPAwarded   int
}

type LevelUp struct {
	Pillar string
	From   string
	To     string
}

type RecordOutput struct {
	Session  SessionOutput
	Entry    *EntryOutput
	LevelUps []LevelUp
}

type LogInput struct {
	KataSlug string
	Note     string
}

type AbandonOutput struct {
	KataSlug  string
	Abandoned bool
}
