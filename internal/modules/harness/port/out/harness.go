package out

import (
	"context"
	"time"

	"dojo/internal/modules/harness/domain"
)

type Runner interface {
	Run(ctx context.Context, workspace string, timeout time.Duration) domain.Verdict
}
