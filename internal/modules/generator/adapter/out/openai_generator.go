package out

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"dojo/internal/modules/generator/domain"
	generatorout "dojo/internal/modules/generator/port/out"
)

const (
	generateSystemPrompt = "You design short Python practice katas. Reply with JSON only: " +
		`{"title": "...", "mission": "...", "template_kind": "script|http-service|retrieval-pipeline|tool-server"}.`
	diagnoseSystemPrompt = "You are a senior Python engineer. Analyze the failing tests and give a ONE sentence hint " +
		"on what might be wrong. Do not give the full code fix. Focus on the logic error."
)

type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator talks to any OpenAI-compatible chat completion endpoint.
// An empty baseURL uses the public API.
func NewOpenAIGenerator(apiKey, baseURL, model string) (generatorout.ContentGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req domain.Request) (domain.Exercise, error) {
	prompt := fmt.Sprintf("Pillar: %s\nDifficulty: %s\nPropose one kata.", req.Pillar, req.Difficulty)
	content, err := g.complete(ctx, generateSystemPrompt, prompt)
	if err != nil {
		return domain.Exercise{}, err
	}
	var payload struct {
		Title        string `json:"title"`
		Mission      string `json:"mission"`
		TemplateKind string `json:"template_kind"`
	}
	if err := json.Unmarshal([]byte(stripFence(content)), &payload); err != nil {
		return domain.Exercise{}, fmt.Errorf("decode generated kata: %w", err)
	}
	return domain.Exercise{Title: payload.Title, Mission: payload.Mission, TemplateKind: payload.TemplateKind, Source: "openai:" + g.model}, nil
}

func (g *OpenAIGenerator) Diagnose(ctx context.Context, detail domain.FailureDetail) (string, error) {
	b := strings.Builder{}
	b.WriteString("Project: " + detail.KataSlug + "\n")
	for _, f := range detail.Failures {
		b.WriteString(fmt.Sprintf("FAIL %s: %s\n", f.Name, f.Message))
	}
	b.WriteString("Traceback:\n" + detail.Excerpt(2000))
	return g.complete(ctx, diagnoseSystemPrompt, b.String())
}

func (g *OpenAIGenerator) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", domain.ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
