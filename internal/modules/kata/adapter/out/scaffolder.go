package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dojo/internal/modules/kata/domain"
	kataout "dojo/internal/modules/kata/port/out"
)

// WorkspaceScaffolder seeds a new workspace with a mission note, an entry
// point and one failing test. Existing files are never overwritten.
type WorkspaceScaffolder struct{}

func NewWorkspaceScaffolder() kataout.Scaffolder {
	return WorkspaceScaffolder{}
}

func (WorkspaceScaffolder) Scaffold(_ context.Context, kata domain.Kata) error {
	if kata.WorkspacePath == "" {
		return fmt.Errorf("workspace path is required")
	}
	if err := os.MkdirAll(filepath.Join(kata.WorkspacePath, "tests"), 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	files := []struct{ name, content string }{
		{"MISSION.md", missionNote(kata)},
		{"main.py", entryPoint(kata)},
		{"tests/__init__.py", ""},
		{"tests/test_mission.py", placeholderTest(kata)},
	}
	for _, file := range files {
		if err := writeIfAbsent(filepath.Join(kata.WorkspacePath, filepath.FromSlash(file.name)), file.content); err != nil {
			return err
		}
	}
	return nil
}

func writeIfAbsent(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func missionNote(kata domain.Kata) string {
	b := strings.Builder{}
	b.WriteString("# Mission: " + kata.Title + "\n\n")
	b.WriteString("- Template: " + string(kata.TemplateKind) + "\n")
	b.WriteString("- Pillars: " + strings.Join(kata.Pillars, ", ") + "\n")
	if kata.Difficulty != "" {
		b.WriteString("- Difficulty: " + kata.Difficulty + "\n")
	}
	b.WriteString("\n## Brief\n\n")
	if kata.Mission != "" {
		b.WriteString(kata.Mission + "\n")
	} else {
		b.WriteString("Describe the behaviour you want, then make tests/test_mission.py pass.\n")
	}
	return b.String()
}

func entryPoint(kata domain.Kata) string {
	switch kata.TemplateKind {
	case domain.TemplateHTTPService, domain.TemplateToolServer:
		return fmt.Sprintf("\"\"\"Kata: %s\"\"\"\n\n\ndef handle(request: dict) -> dict:\n    raise NotImplementedError\n\n\nif __name__ == \"__main__\":\n    print(handle({}))\n", kata.Title)
	case domain.TemplateRetrievalPipeline:
		return fmt.Sprintf("\"\"\"Kata: %s\"\"\"\n\n\ndef retrieve(query: str, top_k: int = 3) -> list[str]:\n    raise NotImplementedError\n\n\nif __name__ == \"__main__\":\n    print(retrieve(\"hello\"))\n", kata.Title)
	default:
		return fmt.Sprintf("\"\"\"Kata: %s\"\"\"\n\n\ndef main() -> None:\n    print(\"Implement your kata logic here.\")\n\n\nif __name__ == \"__main__\":\n    main()\n", kata.Title)
	}
}

func placeholderTest(kata domain.Kata) string {
	title := strings.ReplaceAll(kata.Title, "'", "\"")
	return "import unittest\n\n\nclass MissionTests(unittest.TestCase):\n" +
		"    def test_mission_placeholder(self):\n" +
		"        self.fail('Write the first real test for: " + title + "')\n\n\n" +
		"if __name__ == '__main__':\n    unittest.main()\n"
}
