package dto

import "time"

type CreateInput struct {
	Title        string
	TemplateKind string
	Pillars      []string
	Difficulty   string
	Mission      string
}

type ReindexInput struct{}

type KataOutput struct {
	Slug          string
	Title         string
	TemplateKind  string
	Pillars       []string
	Difficulty    string
	CreatedAt     time.Time
	WorkspacePath string
}

type KataDetailOutput struct {
	KataOutput
	Mission string
}
