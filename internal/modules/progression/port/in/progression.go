package in

import "dojo/internal/modules/progression/dto"

// Usecase is pure: every call depends only on its arguments and the
// configured policy.
type Usecase interface {
	Award(input dto.AwardInput) dto.AwardOutput
	LevelFor(xp int) string
	DifficultyHint(input dto.HintInput) dto.HintOutput
	Summary(xpByPillar map[string]int, completed int) dto.SummaryOutput
}
