package domain

import (
	"fmt"
	"math"
	"sort"
)

type Pillar string

const (
	PillarFundamentals Pillar = "python-fundamentals"
	PillarCLI          Pillar = "cli"
	PillarAPI          Pillar = "api"
	PillarTesting      Pillar = "testing"
)

// Pillars is the canonical pillar order used for display and tie breaking.
var Pillars = []Pillar{PillarFundamentals, PillarCLI, PillarAPI, PillarTesting}

func (p Pillar) Validate() error {
	switch p {
	case PillarFundamentals, PillarCLI, PillarAPI, PillarTesting:
		return nil
	default:
		return fmt.Errorf("unsupported pillar %q", string(p))
	}
}

type Level string

const (
	LevelNovice     Level = "Novice"
	LevelApprentice Level = "Apprentice"
	LevelJourneyman Level = "Journeyman"
	LevelExpert     Level = "Expert"
	LevelMaster     Level = "Master"
)

type Difficulty string

const (
	DifficultyFoundation   Difficulty = "foundation"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Validate() error {
	switch d {
	case DifficultyFoundation, DifficultyIntermediate, DifficultyAdvanced:
		return nil
	default:
		return fmt.Errorf("unsupported difficulty %q", string(d))
	}
}

type QualityTier string

const (
	TierFirstTry      QualityTier = "first-try"
	TierAfterFailures QualityTier = "after-failures"
	TierUnverified    QualityTier = "unverified"
)

// TierOrder runs from least to most friction.
var TierOrder = []QualityTier{TierFirstTry, TierAfterFailures, TierUnverified}

// TierFor grades a completion by the friction that preceded it.
func TierFor(failedRuns int, verified bool) QualityTier {
	switch {
	case !verified:
		return TierUnverified
	case failedRuns > 0:
		return TierAfterFailures
	default:
		return TierFirstTry
	}
}

type Threshold struct {
	Level Level
	MinXP int
}

// Policy holds every tunable of the progression engine. All methods are pure.
type Policy struct {
	BaseAward   int
	Multipliers map[QualityTier]float64
	Thresholds  []Threshold
	Difficulty  map[Level]Difficulty
}

func NewPolicy(baseAward int, multipliers map[QualityTier]float64, thresholds []Threshold, difficulty map[Level]Difficulty) (Policy, error) {
	p := Policy{BaseAward: baseAward, Multipliers: multipliers, Thresholds: thresholds, Difficulty: difficulty}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	if p.BaseAward < 0 {
		return fmt.Errorf("base award must not be negative")
	}
	if len(p.Thresholds) == 0 {
		return fmt.Errorf("at least one level threshold is required")
	}
	for i := 1; i < len(p.Thresholds); i++ {
		if p.Thresholds[i].MinXP <= p.Thresholds[i-1].MinXP {
			return fmt.Errorf("level thresholds must be strictly increasing at %s", p.Thresholds[i].Level)
		}
	}
	prev := math.Inf(1)
	for _, tier := range TierOrder {
		m, ok := p.Multipliers[tier]
		if !ok {
			continue
		}
		if m < 0 {
			return fmt.Errorf("multiplier for %s must not be negative", tier)
		}
		if m > prev {
			return fmt.Errorf("multiplier for %s exceeds a lower-friction tier", tier)
		}
		prev = m
	}
	for level, d := range p.Difficulty {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("difficulty for %s: %w", level, err)
		}
	}
	return nil
}

// LevelFor returns the highest level whose threshold is at or below xp.
// XP below the first threshold maps to the first level.
func (p Policy) LevelFor(xp int) Level {
	level := p.Thresholds[0].Level
	for _, t := range p.Thresholds {
		if t.MinXP > xp {
			break
		}
		level = t.Level
	}
	return level
}

// NextThreshold reports the next level to reach, false at the top tier.
func (p Policy) NextThreshold(xp int) (Threshold, bool) {
	for _, t := range p.Thresholds {
		if t.MinXP > xp {
			return t, true
		}
	}
	return Threshold{}, false
}

// Award is the XP for one completion at the given tier.
func (p Policy) Award(tier QualityTier) int {
	m, ok := p.Multipliers[tier]
	if !ok {
		return 0
	}
	return int(math.Floor(float64(p.BaseAward) * m))
}

func (p Policy) DifficultyHint(xpByPillar map[Pillar]int, pillar Pillar) Difficulty {
	if d, ok := p.Difficulty[p.LevelFor(xpByPillar[pillar])]; ok {
		return d
	}
	return DifficultyFoundation
}

// WeakestPillar picks the pillar with the least XP; ties go to the earlier
// canonical pillar.
func WeakestPillar(xpByPillar map[Pillar]int) Pillar {
	ordered := append([]Pillar(nil), Pillars...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return xpByPillar[ordered[i]] < xpByPillar[ordered[j]]
	})
	return ordered[0]
}
