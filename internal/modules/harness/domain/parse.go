package domain

import (
	"regexp"
	"strings"
)

var (
	unittestHeader = regexp.MustCompile(`^(FAIL|ERROR): (.+)$`)
	pytestSummary  = regexp.MustCompile(`^(FAILED|ERROR) (\S+)(?: - (.*))?$`)
	goTestFail     = regexp.MustCompile(`^\s*--- FAIL: (\S+)`)
)

// ParseFailures extracts failing tests from unittest, pytest or go test
// output. The first format that yields failures wins.
func ParseFailures(output string) []Failure {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
	for _, parse := range []func([]string) []Failure{parseUnittest, parsePytest, parseGoTest} {
		if failures := parse(lines); len(failures) > 0 {
			return failures
		}
	}
	return nil
}

func parseUnittest(lines []string) []Failure {
	var out []Failure
	for i := 0; i < len(lines); i++ {
		m := unittestHeader.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		failure := Failure{Name: strings.TrimSpace(m[2])}
		j := i + 1
		if j < len(lines) && isRule(lines[j], '-') {
			j++
		}
		for ; j < len(lines); j++ {
			if isRule(lines[j], '=') || isRule(lines[j], '-') {
				break
			}
			if text := strings.TrimSpace(lines[j]); text != "" {
				failure.Message = text
			}
		}
		out = append(out, failure)
		i = j - 1
	}
	return out
}

func parsePytest(lines []string) []Failure {
	var out []Failure
	for _, line := range lines {
		m := pytestSummary.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil || !strings.Contains(m[2], "::") {
			continue
		}
		out = append(out, Failure{Name: m[2], Message: strings.TrimSpace(m[3])})
	}
	return out
}

func parseGoTest(lines []string) []Failure {
	var out []Failure
	for i, line := range lines {
		m := goTestFail.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		failure := Failure{Name: m[1]}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		for _, next := range lines[i+1:] {
			nextIndent := len(next) - len(strings.TrimLeft(next, " \t"))
			text := strings.TrimSpace(next)
			if text == "" || nextIndent <= indent || strings.HasPrefix(text, "---") {
				break
			}
			failure.Message = text
			break
		}
		out = append(out, failure)
	}
	return out
}

func isRule(line string, ch byte) bool {
	line = strings.TrimSpace(line)
	if len(line) < 10 {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != ch {
			return false
		}
	}
	return true
}
