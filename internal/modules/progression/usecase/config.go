package usecase

import (
	"dojo/internal/modules/progression/domain"
	"dojo/internal/platform/config"
)

// PolicyFromConfig maps the progression section of dojo.yaml onto a
// validated policy.
func PolicyFromConfig(cfg config.ProgressionConfig) (domain.Policy, error) {
	multipliers := make(map[domain.QualityTier]float64, len(cfg.Multipliers))
	for tier, m := range cfg.Multipliers {
		multipliers[domain.QualityTier(tier)] = m
	}
	thresholds := make([]domain.Threshold, 0, len(cfg.Levels))
	for _, level := range cfg.Levels {
		thresholds = append(thresholds, domain.Threshold{Level: domain.Level(level.Name), MinXP: level.MinXP})
	}
	difficulty := make(map[domain.Level]domain.Difficulty, len(cfg.Difficulty))
	for level, d := range cfg.Difficulty {
		difficulty[domain.Level(level)] = domain.Difficulty(d)
	}
	return domain.NewPolicy(cfg.BaseAward, multipliers, thresholds, difficulty)
}
