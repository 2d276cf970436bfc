package usecase

import (
	"dojo/internal/modules/progression/domain"
	"dojo/internal/modules/progression/dto"
	progressionin "dojo/internal/modules/progression/port/in"
)

type Interactor struct {
	policy domain.Policy
}

func NewInteractor(policy domain.Policy) progressionin.Usecase {
	return &Interactor{policy: policy}
}

func (i *Interactor) Award(input dto.AwardInput) dto.AwardOutput {
	tier := domain.TierFor(input.FailedRuns, input.Verified)
	return dto.AwardOutput{Tier: string(tier), XP: i.policy.Award(tier)}
}

func (i *Interactor) LevelFor(xp int) string {
	return string(i.policy.LevelFor(xp))
}

// DifficultyHint resolves an empty pillar to the weakest one.
func (i *Interactor) DifficultyHint(input dto.HintInput) dto.HintOutput {
	xp := toDomain(input.XPByPillar)
	pillar := domain.Pillar(input.Pillar)
	if pillar == "" {
		pillar = domain.WeakestPillar(xp)
	}
	return dto.HintOutput{
		Pillar:     string(pillar),
		Level:      string(i.policy.LevelFor(xp[pillar])),
		Difficulty: string(i.policy.DifficultyHint(xp, pillar)),
	}
}

func (i *Interactor) Summary(xpByPillar map[string]int, completed int) dto.SummaryOutput {
	xp := toDomain(xpByPillar)
	out := dto.SummaryOutput{Completed: completed, Weakest: string(domain.WeakestPillar(xp))}
	for _, pillar := range domain.Pillars {
		value := xp[pillar]
		row := dto.PillarSummary{Pillar: string(pillar), XP: value, Level: string(i.policy.LevelFor(value))}
		if next, ok := i.policy.NextThreshold(value); ok {
			row.NextLevel = string(next.Level)
			row.NextXP = next.MinXP
		}
		out.TotalXP += value
		out.Pillars = append(out.Pillars, row)
	}
	return out
}

func toDomain(in map[string]int) map[domain.Pillar]int {
	out := make(map[domain.Pillar]int, len(in))
	for k, v := range in {
		out[domain.Pillar(k)] = v
	}
	return out
}
