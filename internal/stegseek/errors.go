package stegseek

import (
	"errors"
	"fmt"
	"time"

	"github.com/steghunt/steghunt/internal/types"
)

// ErrBinaryNotFound is returned when no stegseek executable can be located.
var ErrBinaryNotFound = errors.New("stegseek binary not found")

// SpawnError reports that stegseek could not be started for a candidate.
type SpawnError struct {
	Op   types.Op
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn stegseek %s for %s: %v", e.Op, e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// TimeoutError reports an invocation that was killed after exceeding the
// configured per-invocation timeout.
type TimeoutError struct {
	Op    types.Op
	Path  string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("stegseek %s for %s timed out after %s", e.Op, e.Path, e.After)
}
