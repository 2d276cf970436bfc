package in

import (
	"context"

	"dojo/internal/modules/watch/dto"
)

// Reporter receives loop events in order. Report is called from the loop's
// event goroutine and must return quickly.
type Reporter interface {
	Report(event dto.Event)
}

type Usecase interface {
	// Watch blocks until ctx ends, running the kata's tests after every
	// settled burst of changes.
	Watch(ctx context.Context, input dto.WatchInput, reporter Reporter) error
	// Check runs a single cycle against the kata's workspace.
	Check(ctx context.Context, slug string) (dto.CheckOutput, error)
}
