package domain

import (
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	KindPassed  Kind = "passed"
	KindFailed  Kind = "failed"
	KindTimeout Kind = "timeout"
	KindCrash   Kind = "crash"
)

type Failure struct {
	Name    string
	Message string
}

type Verdict struct {
	Kind     Kind
	Failures []Failure
	TimedOut bool
	// Canceled is set when the caller stopped the run; such verdicts carry no
	// information about the workspace.
	Canceled bool
	Duration time.Duration
	ExitCode int
	Output   string
}

func (v Verdict) Passed() bool {
	return v.Kind == KindPassed
}

// Outcome describes how a test process ended.
type Outcome struct {
	StartFailed bool
	TimedOut    bool
	Signaled    bool
	ExitCode    int
}

// Classify maps a process outcome and its parsed failures to a verdict kind.
// Passing requires a clean exit and zero parsed failures.
func Classify(outcome Outcome, failures []Failure) Kind {
	switch {
	case outcome.TimedOut:
		return KindTimeout
	case outcome.StartFailed, outcome.Signaled:
		return KindCrash
	case outcome.ExitCode == 0 && len(failures) == 0:
		return KindPassed
	case len(failures) > 0:
		return KindFailed
	default:
		return KindCrash
	}
}

func (v Verdict) Summary() string {
	switch v.Kind {
	case KindPassed:
		return fmt.Sprintf("passed in %s", v.Duration.Round(time.Millisecond))
	case KindTimeout:
		return fmt.Sprintf("timed out after %s", v.Duration.Round(time.Millisecond))
	case KindCrash:
		return fmt.Sprintf("test process crashed (exit %d)", v.ExitCode)
	default:
		names := make([]string, 0, len(v.Failures))
		for _, f := range v.Failures {
			names = append(names, f.Name)
		}
		return fmt.Sprintf("%d failing: %s", len(v.Failures), strings.Join(names, ", "))
	}
}
