package in

import (
	"context"

	"dojo/internal/modules/harness/dto"
)

// Usecase runs a workspace's tests exactly once. Test problems are reported
// in the verdict; the error is reserved for an unusable workspace.
type Usecase interface {
	Check(ctx context.Context, input dto.CheckInput) (dto.VerdictOutput, error)
}
