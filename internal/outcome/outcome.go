// Package outcome provides a three-way result for operator-driven flows:
// a value, a deliberate cancellation, or a failure.
package outcome

import (
	"github.com/orion-edge/orion-cli/internal/interaction"
)

// Kind tags which branch a Result holds
type Kind int

const (
	KindSucceeded Kind = iota
	KindCancelled
	KindFailed
)

// String returns the label used in logs and metrics
func (k Kind) String() string {
	switch k {
	case KindSucceeded:
		return "succeeded"
	case KindCancelled:
		return "cancelled"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is either Succeeded(value), Cancelled or Failed(err)
type Result[T any] struct {
	kind  Kind
	value T
	err   error
}

// Succeeded wraps value
func Succeeded[T any](value T) Result[T] {
	return Result[T]{kind: KindSucceeded, value: value}
}

// Cancelled reports a clean operator abort
func Cancelled[T any]() Result[T] {
	return Result[T]{kind: KindCancelled}
}

// Failed wraps err. A nil err is still a failure.
func Failed[T any](err error) Result[T] {
	return Result[T]{kind: KindFailed, err: err}
}

// FromError maps err onto a result: ErrCancelled becomes Cancelled, anything else Failed
func FromError[T any](err error) Result[T] {
	if interaction.IsCancelled(err) {
		return Cancelled[T]()
	}
	return Failed[T](err)
}

func (r Result[T]) Kind() Kind        { return r.kind }
func (r Result[T]) IsSucceeded() bool { return r.kind == KindSucceeded }
func (r Result[T]) IsCancelled() bool { return r.kind == KindCancelled }
func (r Result[T]) IsFailed() bool    { return r.kind == KindFailed }

// Value returns the value and whether the result succeeded
func (r Result[T]) Value() (T, bool) {
	return r.value, r.kind == KindSucceeded
}

// Err returns the failure, or nil for the other branches
func (r Result[T]) Err() error {
	return r.err
}
