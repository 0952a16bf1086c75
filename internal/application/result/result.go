// Package result implements the two-shape outcome every command and query
// boundary returns for expected failures.
package result

import "strings"

// Kind classifies a failure so transports can choose a status code.
type Kind int

const (
	// KindNone marks a success.
	KindNone Kind = iota

	// KindRule covers broken business rules and duplicates.
	KindRule

	// KindNotFound covers missing entities on reads and referential checks.
	KindNotFound
)

// Result is either a success carrying a value or a failure carrying an
// ordered list of messages. The zero value is a failure with no messages.
type Result[T any] struct {
	value   T
	errors  []string
	kind    Kind
	success bool
}

// Success wraps a value.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value, success: true}
}

// Failure builds a rule failure from one or more messages.
func Failure[T any](errs ...string) Result[T] {
	return Result[T]{errors: errs, kind: KindRule}
}

// NotFound builds a failure for a missing entity.
func NotFound[T any](errs ...string) Result[T] {
	return Result[T]{errors: errs, kind: KindNotFound}
}

// IsSuccess reports the shape of the result.
func (r Result[T]) IsSuccess() bool {
	return r.success
}

// Value returns the payload; meaningful only on success.
func (r Result[T]) Value() T {
	return r.value
}

// Errors returns a copy of the failure messages.
func (r Result[T]) Errors() []string {
	if len(r.errors) == 0 {
		return nil
	}
	out := make([]string, len(r.errors))
	copy(out, r.errors)
	return out
}

// Kind returns the failure classification, KindNone on success.
func (r Result[T]) Kind() Kind {
	if r.success {
		return KindNone
	}
	return r.kind
}

// Error joins the messages, handy for logs.
func (r Result[T]) Error() string {
	return strings.Join(r.errors, "; ")
}

// Map converts a successful value, passing failures through unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.success {
		return Result[U]{errors: r.errors, kind: r.kind}
	}
	return Success(fn(r.value))
}
