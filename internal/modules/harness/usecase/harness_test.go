package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dojo/internal/modules/harness/domain"
	"dojo/internal/modules/harness/dto"
	"dojo/internal/modules/harness/usecase"
	apperrors "dojo/internal/platform/errors"
)

type fakeRunner struct {
	verdict   domain.Verdict
	workspace string
	timeout   time.Duration
}

func (f *fakeRunner) Run(_ context.Context, workspace string, timeout time.Duration) domain.Verdict {
	f.workspace = workspace
	f.timeout = timeout
	return f.verdict
}

func TestCheckMapsVerdict(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{verdict: domain.Verdict{Kind: domain.KindFailed, Failures: []domain.Failure{{Name: "test_age", Message: "25 != 26"}}, ExitCode: 1}}
	uc := usecase.NewInteractor(runner, 20*time.Second)
	ws := t.TempDir()

	out, err := uc.Check(context.Background(), dto.CheckInput{Workspace: ws})
	require.NoError(t, err)
	require.Equal(t, "failed", out.Kind)
	require.Equal(t, []dto.Failure{{Name: "test_age", Message: "25 != 26"}}, out.Failures)
	require.Equal(t, "1 failing: test_age", out.Summary)
	require.Equal(t, ws, runner.workspace)
	require.Equal(t, 20*time.Second, runner.timeout)

	_, err = uc.Check(context.Background(), dto.CheckInput{Workspace: ws, Timeout: time.Second})
	require.NoError(t, err)
	require.Equal(t, time.Second, runner.timeout)
}

func TestCheckRejectsBadWorkspace(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(&fakeRunner{}, time.Second)
	_, err := uc.Check(context.Background(), dto.CheckInput{Workspace: filepath.Join(t.TempDir(), "missing")})
	require.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = uc.Check(context.Background(), dto.CheckInput{Workspace: file})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = uc.Check(context.Background(), dto.CheckInput{})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
