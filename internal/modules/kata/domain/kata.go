package domain

import (
	"fmt"
	"strings"
	"time"

	progressiondomain "dojo/internal/modules/progression/domain"
)

type TemplateKind string

const (
	TemplateScript            TemplateKind = "script"
	TemplateHTTPService       TemplateKind = "http-service"
	TemplateRetrievalPipeline TemplateKind = "retrieval-pipeline"
	TemplateToolServer        TemplateKind = "tool-server"
)

const (
	SchemaVersion = 1
	NoteName      = "KATA.md"
)

func (k TemplateKind) Validate() error {
	switch k {
	case TemplateScript, TemplateHTTPService, TemplateRetrievalPipeline, TemplateToolServer:
		return nil
	default:
		return fmt.Errorf("unsupported template kind %q", string(k))
	}
}

type Kata struct {
	Slug          string
	Title         string
	TemplateKind  TemplateKind
	Pillars       []string
	Difficulty    string
	CreatedAt     time.Time
	WorkspacePath string
	Mission       string
}

func (k Kata) Validate() error {
	if err := k.TemplateKind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(k.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(k.Slug) == "" {
		return fmt.Errorf("slug is required")
	}
	if len(k.Pillars) == 0 {
		return fmt.Errorf("at least one pillar is required")
	}
	for _, pillar := range k.Pillars {
		if err := progressiondomain.Pillar(pillar).Validate(); err != nil {
			return err
		}
	}
	return nil
}
