package searchstate

import (
	"errors"
	"fmt"

	"github.com/hupe1980/searchstate/internal/resource"
	"github.com/hupe1980/searchstate/workspace"
)

var (
	// ErrPoolClosed is returned by Acquire after Close.
	ErrPoolClosed = errors.New("workspace pool closed")

	// ErrPoolBusy is returned by TryAcquire when Acquire would have to wait.
	ErrPoolBusy = errors.New("workspace pool busy")

	// ErrNotLeased is returned when releasing a workspace the pool did not hand out
	// (or already got back).
	ErrNotLeased = errors.New("workspace not leased from this pool")

	// ErrMemoryLimitExceeded is returned when a new workspace would exceed the
	// pool's memory limit.
	ErrMemoryLimitExceeded = errors.New("workspace memory limit exceeded")
)

// ErrInvalidArgument indicates an unusable pool size parameter.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidArgument struct {
	Name  string
	Value int
	cause error
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Name, e.Value)
}

func (e *ErrInvalidArgument) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrMemoryLimitExceeded, err)
	}
	var ia *workspace.ErrInvalidArgument
	if errors.As(err, &ia) {
		return &ErrInvalidArgument{Name: ia.Name, Value: ia.Value, cause: err}
	}

	return err
}
