package usecase

import (
	"context"

	"dojo/internal/modules/progress/dto"
	progressin "dojo/internal/modules/progress/port/in"
	progressout "dojo/internal/modules/progress/port/out"
	progressiondto "dojo/internal/modules/progression/dto"
	progressionin "dojo/internal/modules/progression/port/in"
)

type Interactor struct {
	store       progressout.Store
	progression progressionin.Usecase
}

func NewInteractor(store progressout.Store, progression progressionin.Usecase) progressin.Usecase {
	return &Interactor{store: store, progression: progression}
}

func (i *Interactor) Snapshot(ctx context.Context) (dto.SnapshotOutput, error) {
	profile, err := i.store.Load(ctx)
	if err != nil {
		return dto.SnapshotOutput{}, err
	}
	out := dto.SnapshotOutput{
		Summary:    i.progression.Summary(profile.XPByPillar, profile.CompletedCount),
		Suggested:  i.progression.DifficultyHint(progressiondto.HintInput{XPByPillar: profile.XPByPillar}),
		LogEntries: len(profile.Log),
		UpdatedAt:  profile.UpdatedAt,
	}
	if rec, ok := profile.Active(); ok && rec.Status.Open() {
		out.ActiveSlug = rec.KataSlug
	}
	return out, nil
}

func (i *Interactor) History(ctx context.Context, limit int) ([]dto.EntryOutput, error) {
	profile, err := i.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	entries := profile.Recent(limit)
	out := make([]dto.EntryOutput, 0, len(entries))
	for _, entry := range entries {
		row := dto.EntryOutput{
			ID:          entry.ID,
			KataSlug:    entry.KataSlug,
			Timestamp:   entry.Timestamp,
			Note:        entry.Note,
			QualityTier: entry.QualityTier,
			Verified:    entry.Verified,
			Completion:  entry.Completion,
			XPAwarded:   entry.XPAwarded,
		}
		if entry.VerdictSummary != nil {
			row.Verdict = entry.VerdictSummary.Kind
		}
		out = append(out, row)
	}
	return out, nil
}
