package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrNotFound                = errors.New("not found")
	ErrConflict                = errors.New("lifecycle conflict")
	ErrNoActiveSession         = errors.New("no active session")
	ErrActiveSessionExists     = fmt.Errorf("%w: active session already exists", ErrConflict)
	ErrCorruptState            = errors.New("corrupt progress state")
	ErrHarnessTimeout          = errors.New("test harness timed out")
	ErrHarnessCrash            = errors.New("test harness crashed")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

// CorruptStateError reports a persisted document that could not be decoded.
// It is never recovered from automatically.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt progress state at %s: %v", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }

func (e *CorruptStateError) Is(target error) bool { return target == ErrCorruptState }

func Unavailable(what string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrCollaboratorUnavailable, what)
	}
	return fmt.Errorf("%w: %s: %v", ErrCollaboratorUnavailable, what, err)
}
