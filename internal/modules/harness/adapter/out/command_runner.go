package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"

	"dojo/internal/modules/harness/domain"
	harnessout "dojo/internal/modules/harness/port/out"
	"dojo/internal/platform/logging"
)

const maxOutputBytes = 256 << 10

// CommandRunner executes the configured test command inside the workspace, in
// its own process group. On timeout the group receives SIGTERM, then SIGKILL
// once the grace period elapses.
type CommandRunner struct {
	argv   []string
	env    map[string]string
	grace  time.Duration
	logger *zap.Logger
}

func NewCommandRunner(argv []string, env map[string]string, grace time.Duration, logger *zap.Logger) harnessout.Runner {
	return &CommandRunner{argv: append([]string(nil), argv...), env: env, grace: grace, logger: logging.OrNop(logger)}
}

func (r *CommandRunner) Run(ctx context.Context, workspace string, timeout time.Duration) domain.Verdict {
	started := time.Now()
	if len(r.argv) == 0 {
		return domain.Verdict{Kind: domain.KindCrash, ExitCode: -1, Output: "no test command configured"}
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.argv[0], r.argv[1:]...)
	cmd.Dir = workspace
	cmd.Env = r.environment()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return signalGroup(cmd, syscall.SIGTERM)
	}
	cmd.WaitDelay = r.grace
	out := &cappedBuffer{max: maxOutputBytes}
	cmd.Stdout = out
	cmd.Stderr = out

	r.logger.Debug("harness run start", zap.String("workspace", workspace), zap.Strings("argv", r.argv), zap.Duration("timeout", timeout))
	err := cmd.Run()
	if cmd.Process != nil {
		_ = signalGroup(cmd, syscall.SIGKILL)
	}

	outcome := domain.Outcome{ExitCode: -1}
	var exitErr *exec.ExitError
	switch {
	case cmd.ProcessState == nil:
		outcome.StartFailed = true
		if err != nil {
			out.WriteString(err.Error())
		}
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		outcome.TimedOut = true
		outcome.ExitCode = cmd.ProcessState.ExitCode()
	case errors.As(err, &exitErr) || err == nil:
		outcome.ExitCode = cmd.ProcessState.ExitCode()
		if status, ok := cmd.ProcessState.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			outcome.Signaled = true
		}
	default:
		outcome.ExitCode = cmd.ProcessState.ExitCode()
		outcome.Signaled = true
		out.WriteString("\n" + err.Error())
	}

	output := out.String()
	failures := domain.ParseFailures(output)
	verdict := domain.Verdict{
		Kind:     domain.Classify(outcome, failures),
		Failures: failures,
		TimedOut: outcome.TimedOut,
		Canceled: ctx.Err() != nil && !outcome.TimedOut,
		Duration: time.Since(started),
		ExitCode: outcome.ExitCode,
		Output:   output,
	}
	r.logger.Debug("harness run finish",
		zap.String("workspace", workspace),
		zap.String("kind", string(verdict.Kind)),
		zap.Int("exit_code", verdict.ExitCode),
		zap.Int("failures", len(failures)),
		zap.Duration("duration", verdict.Duration),
	)
	return verdict
}

func (r *CommandRunner) environment() []string {
	env := os.Environ()
	keys := make([]string, 0, len(r.env))
	for k := range r.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, r.env[k]))
	}
	return env
}

func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}

// cappedBuffer keeps the first max bytes and silently drops the rest.
type cappedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	remaining := c.max - c.buf.Len()
	if remaining <= 0 {
		c.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		c.truncated = true
		c.buf.Write(p[:remaining])
		return len(p), nil
	}
	return c.buf.Write(p)
}

func (c *cappedBuffer) WriteString(s string) {
	_, _ = c.Write([]byte(s))
}

func (c *cappedBuffer) String() string {
	if c.truncated {
		return c.buf.String() + "\n[output truncated]"
	}
	return c.buf.String()
}
