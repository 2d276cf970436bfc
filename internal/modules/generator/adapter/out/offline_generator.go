package out

import (
	"context"
	"fmt"
	"strings"

	"dojo/internal/modules/generator/domain"
	generatorout "dojo/internal/modules/generator/port/out"
)

type idea struct {
	title   string
	mission string
}

var ideaBank = map[string]map[string]idea{
	"python-fundamentals": {
		"foundation":   {"Basic Calculator", "Build add, subtract, multiply and divide functions with input validation."},
		"intermediate": {"CSV Summarizer", "Load a CSV file and report min, max and average for every numeric column."},
		"advanced":     {"Config Loader", "Parse a YAML or JSON config and validate its required fields."},
	},
	"cli": {
		"foundation":   {"Todo CLI", "Add, list and complete tasks stored in a local JSON file."},
		"intermediate": {"Log Filter CLI", "Filter a log file by level and date and print the matches."},
		"advanced":     {"Bulk Rename CLI", "Rename files by pattern with a dry-run mode."},
	},
	"api": {
		"foundation":   {"Health and Echo API", "Serve /health and /echo?msg=... endpoints."},
		"intermediate": {"Notes API", "CRUD notes in memory with basic validation."},
		"advanced":     {"Shortlink API", "Create, read and delete shortlinks in memory with collision checks."},
	},
	"testing": {
		"foundation":   {"String Utils Tests", "Write and test a couple of string helper functions."},
		"intermediate": {"Input Validator Tests", "Implement and test input validation functions."},
		"advanced":     {"File Ops Tests", "Implement file read and write helpers with edge-case tests."},
	},
}

var hintRules = []struct {
	marker string
	hint   string
}{
	{"AssertionError", "Compare the expected and actual values in the assertion; check the boundary case first."},
	{"TypeError", "A value has the wrong type; check what each function returns and what the caller passes in."},
	{"ValueError", "An input is rejected or mis-parsed; trace the conversion step with the failing input."},
	{"KeyError", "A lookup used a key that is missing; print the mapping's keys before the access."},
	{"IndexError", "An index runs past the end; re-check loop bounds and empty inputs."},
	{"AttributeError", "An object lacks the attribute you call; check for a None return earlier on."},
	{"ImportError", "The test cannot import your module; check file names and the function it imports."},
	{"ModuleNotFoundError", "The test cannot import your module; check file names and the function it imports."},
	{"NotImplementedError", "A stub is still in place; implement the function the test calls."},
}

// OfflineGenerator answers from a fixed idea bank and simple failure
// heuristics. It never fails.
type OfflineGenerator struct{}

func NewOfflineGenerator() generatorout.ContentGenerator {
	return OfflineGenerator{}
}

func (OfflineGenerator) Generate(_ context.Context, req domain.Request) (domain.Exercise, error) {
	byLevel, ok := ideaBank[req.Pillar]
	if !ok {
		byLevel = ideaBank["python-fundamentals"]
	}
	picked, ok := byLevel[req.Difficulty]
	if !ok {
		picked = byLevel["foundation"]
	}
	kind := "script"
	if req.Pillar == "api" {
		kind = "http-service"
	}
	return domain.Exercise{Title: picked.title, Mission: picked.mission, TemplateKind: kind, Source: "offline"}, nil
}

func (OfflineGenerator) Diagnose(_ context.Context, detail domain.FailureDetail) (string, error) {
	text := detail.Output
	for _, f := range detail.Failures {
		text += "\n" + f.Message
	}
	for _, rule := range hintRules {
		if strings.Contains(text, rule.marker) {
			return rule.hint, nil
		}
	}
	if len(detail.Failures) > 0 {
		return fmt.Sprintf("Start with %s; run it alone and read the first line of its traceback.", detail.Failures[0].Name), nil
	}
	return "Run the tests once more and read the first error from the top.", nil
}
