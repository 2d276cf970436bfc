package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"dojo/internal/modules/harness/domain"
	"dojo/internal/modules/harness/dto"
	harnessin "dojo/internal/modules/harness/port/in"
	harnessout "dojo/internal/modules/harness/port/out"
	apperrors "dojo/internal/platform/errors"
)

type Interactor struct {
	runner  harnessout.Runner
	timeout time.Duration
}

func NewInteractor(runner harnessout.Runner, timeout time.Duration) harnessin.Usecase {
	return &Interactor{runner: runner, timeout: timeout}
}

func (i *Interactor) Check(ctx context.Context, input dto.CheckInput) (dto.VerdictOutput, error) {
	workspace := strings.TrimSpace(input.Workspace)
	if workspace == "" {
		return dto.VerdictOutput{}, fmt.Errorf("%w: workspace is required", apperrors.ErrInvalidInput)
	}
	info, err := os.Stat(workspace)
	if err != nil {
		if os.IsNotExist(err) {
			return dto.VerdictOutput{}, fmt.Errorf("%w: workspace %s", apperrors.ErrNotFound, workspace)
		}
		return dto.VerdictOutput{}, fmt.Errorf("stat workspace: %w", err)
	}
	if !info.IsDir() {
		return dto.VerdictOutput{}, fmt.Errorf("%w: workspace %s is not a directory", apperrors.ErrInvalidInput, workspace)
	}
	timeout := i.timeout
	if input.Timeout > 0 {
		timeout = input.Timeout
	}
	return ToOutput(i.runner.Run(ctx, workspace, timeout)), nil
}

func ToOutput(v domain.Verdict) dto.VerdictOutput {
	failures := make([]dto.Failure, 0, len(v.Failures))
	for _, f := range v.Failures {
		failures = append(failures, dto.Failure{Name: f.Name, Message: f.Message})
	}
	return dto.VerdictOutput{
		Kind:     string(v.Kind),
		Failures: failures,
		TimedOut: v.TimedOut,
		Canceled: v.Canceled,
		Duration: v.Duration,
		ExitCode: v.ExitCode,
		Output:   v.Output,
		Summary:  v.Summary(),
	}
}
