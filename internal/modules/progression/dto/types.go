package dto

type AwardInput struct {
	FailedRuns int
	Verified   bool
}

type AwardOutput struct {
	Tier string
	XP   int
}

type HintInput struct {
	XPByPillar map[string]int
	Pillar     string
}

type HintOutput struct {
	Pillar     string
	Level      string
	Difficulty string
}

type PillarSummary struct {
	Pillar    string
	XP        int
	Level     string
	NextLevel string
	NextXP    int
}

type SummaryOutput struct {
	Pillars   []PillarSummary
	TotalXP   int
	Completed int
	Weakest   string
}
