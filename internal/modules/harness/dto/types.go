package dto

import (
	"fmt"
	"time"

	apperrors "dojo/internal/platform/errors"
)

type CheckInput struct {
	Workspace string
	// Timeout overrides the configured bound when positive.
	Timeout time.Duration
}

type Failure struct {
	Name    string
	Message string
}

type VerdictOutput struct {
	Kind     string
	Failures []Failure
	TimedOut bool
	Canceled bool
	Duration time.Duration
	ExitCode int
	Output   string
	Summary  string
}

func (v VerdictOutput) Passed() bool {
	return v.Kind == "passed"
}

// Err describes a non-passing verdict as an error: timeouts and crashes wrap
// their harness sentinels.
func (v VerdictOutput) Err() error {
	switch v.Kind {
	case "passed":
		return nil
	case "timeout":
		return fmt.Errorf("%w after %s", apperrors.ErrHarnessTimeout, v.Duration)
	case "crash":
		return fmt.Errorf("%w: exit code %d", apperrors.ErrHarnessCrash, v.ExitCode)
	default:
		return fmt.Errorf("%d failing tests", len(v.Failures))
	}
}
