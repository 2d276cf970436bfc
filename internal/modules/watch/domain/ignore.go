package domain

import (
	"path/filepath"
	"strings"
)

var DefaultIgnore = []string{".git", ".dojo", "__pycache__", ".pytest_cache", "*.swp", "*.tmp", "*~", "LOG.md"}

// Ignore matches paths whose components match any pattern. Patterns use
// filepath.Match syntax against a single path element.
type Ignore struct {
	patterns []string
}

func NewIgnore(patterns []string) Ignore {
	if len(patterns) == 0 {
		patterns = DefaultIgnore
	}
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return Ignore{patterns: cleaned}
}

// Match reports whether path, taken relative to root, should be ignored.
func (i Ignore) Match(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	if rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == "" {
			continue
		}
		for _, pattern := range i.patterns {
			if part == pattern {
				return true
			}
			if ok, _ := filepath.Match(pattern, part); ok {
				return true
			}
		}
	}
	return false
}
