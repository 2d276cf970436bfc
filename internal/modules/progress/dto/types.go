package dto

import (
	"time"

	progressiondto "dojo/internal/modules/progression/dto"
)

type SnapshotOutput struct {
	Summary    progressiondto.SummaryOutput
	Suggested  progressiondto.HintOutput
	ActiveSlug string
	LogEntries int
	UpdatedAt  time.Time
}

type EntryOutput struct {
	ID          string
	KataSlug    string
	Timestamp   time.Time
	Note        string
	QualityTier string
	Verified    bool
	Completion  bool
	XPAwarded   int
	Verdict     string
}
