// Package outcome carries the explicit result of a browser-driven step, so
// callers branch on a Kind instead of unwinding errors.
package outcome

import (
	"context"
	"errors"

	"repackget/internal/common"
)

type Kind int

const (
	Success Kind = iota
	NotFound
	TimedOut
	AutomationError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case NotFound:
		return "not_found"
	case TimedOut:
		return "timed_out"
	case AutomationError:
		return "automation_error"
	default:
		return "unknown"
	}
}

// Result is either a value (Success) or the reason there is none.
type Result[T any] struct {
	Kind   Kind
	Value  T
	Detail error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Kind: Success, Value: v}
}

func Missing[T any](detail error) Result[T] {
	return Result[T]{Kind: NotFound, Detail: detail}
}

func Expired[T any](detail error) Result[T] {
	return Result[T]{Kind: TimedOut, Detail: detail}
}

func Failed[T any](detail error) Result[T] {
	return Result[T]{Kind: AutomationError, Detail: detail}
}

// From classifies err. A nil error yields Success with v.
func From[T any](v T, err error) Result[T] {
	if err == nil {
		return Ok(v)
	}
	return Result[T]{Kind: Classify(err), Value: v, Detail: err}
}

func (r Result[T]) OK() bool { return r.Kind == Success }

// Err returns Detail, or a sentinel matching Kind when Detail is nil.
func (r Result[T]) Err() error {
	if r.Detail != nil || r.Kind == Success {
		return r.Detail
	}
	switch r.Kind {
	case NotFound:
		return common.ErrNotFound
	case TimedOut:
		return common.ErrTimedOut
	}
	return errors.New(r.Kind.String())
}

func Classify(err error) Kind {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, common.ErrNotFound):
		return NotFound
	case errors.Is(err, common.ErrTimedOut), errors.Is(err, context.DeadlineExceeded):
		return TimedOut
	default:
		return AutomationError
	}
}
