package dto

import (
	"time"

	harnessdto "dojo/internal/modules/harness/dto"
)

type EventKind string

const (
	EventListening  EventKind = "listening"
	EventQueued     EventKind = "queued"
	EventRunStarted EventKind = "run-started"
	EventVerdict    EventKind = "verdict"
	EventRecorded   EventKind = "recorded"
	EventHint       EventKind = "hint"
	EventError      EventKind = "error"
	EventStopped    EventKind = "stopped"
)

// NoHint is reported when the diagnoser cannot answer in time.
const NoHint = "no hint available"

type Event struct {
	Kind      EventKind
	At        time.Time
	KataSlug  string
	Workspace string
	Verdict   *harnessdto.VerdictOutput
	Tier      string
	XPAwarded int
	LevelUps  []string
	Hint      string
	Err       error
}

type WatchInput struct {
	KataSlug string
	// Force receives a value whenever the caller wants an immediate run.
	Force <-chan struct{}
}

type CheckOutput struct {
	KataSlug  string
	Verdict   harnessdto.VerdictOutput
	Recorded  bool
	Tier      string
	XPAwarded int
	LevelUps  []string
	Hint      string
}
