// Package pipeline wraps every command and query dispatch in an ordered
// chain of cross-cutting stages.
//
// A request moves Received → Logged → Validated → Dispatched and ends
// Completed or Rejected. Each stage may short-circuit by returning without
// calling next; the handler itself is invoked at most once per request.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/asidocente/school-records/pkg/logger"
)

// ErrAlreadyDispatched is returned when a stage calls next more than once.
var ErrAlreadyDispatched = errors.New("pipeline: request already dispatched")

// Info describes the request travelling through the stages.
type Info struct {
	// Name is the request type, e.g. "CreateStudent".
	Name string

	// ID correlates log lines, spans and metrics of one request.
	ID string
}

// Next invokes the remaining stages and finally the handler.
type Next func(ctx context.Context) (any, error)

// Behavior is one pipeline stage.
type Behavior func(ctx context.Context, info Info, req any, next Next) (any, error)

// Pipeline composes behaviors around handlers.
type Pipeline struct {
	behaviors []Behavior
}

// New builds a pipeline. Behaviors run in the order given; the first one
// is the outermost.
func New(behaviors ...Behavior) *Pipeline {
	return &Pipeline{behaviors: behaviors}
}

// Send runs req through every stage and then the handler.
func (p *Pipeline) Send(ctx context.Context, name string, req any, handler Next) (any, error) {
	info := Info{Name: name, ID: logger.RequestIDFrom(ctx)}
	if info.ID == "" {
		info.ID = uuid.NewString()
		ctx = logger.WithRequestID(ctx, info.ID)
	}

	var dispatched atomic.Bool
	next := func(ctx context.Context) (any, error) {
		if !dispatched.CompareAndSwap(false, true) {
			return nil, ErrAlreadyDispatched
		}
		// Cancelled requests still pass the stages so they are logged.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return handler(ctx)
	}

	for i := len(p.behaviors) - 1; i >= 0; i-- {
		b, inner := p.behaviors[i], next
		next = func(ctx context.Context) (any, error) {
			return b(ctx, info, req, inner)
		}
	}
	return next(ctx)
}

// Handle binds a typed handler to the pipeline and returns a function with
// the same signature that goes through every stage.
func Handle[Req, Res any](p *Pipeline, name string, h func(context.Context, Req) (Res, error)) func(context.Context, Req) (Res, error) {
	return func(ctx context.Context, req Req) (Res, error) {
		var zero Res

		out, err := p.Send(ctx, name, req, func(ctx context.Context) (any, error) {
			return h(ctx, req)
		})
		if err != nil {
			return zero, err
		}
		res, ok := out.(Res)
		if !ok {
			return zero, fmt.Errorf("pipeline: %s returned %T", name, out)
		}
		return res, nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// OUTCOMES
// ══════════════════════════════════════════════════════════════════════════════

// Outcome labels how a request ended, for logs and metrics.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailure   Outcome = "failure"
	OutcomeRejected  Outcome = "rejected"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeError     Outcome = "error"
)

type successReporter interface {
	IsSuccess() bool
}

// Classify maps a handler return to an Outcome.
func Classify(out any, err error) Outcome {
	switch {
	case err == nil:
		if r, ok := out.(successReporter); ok && !r.IsSuccess() {
			return OutcomeFailure
		}
		return OutcomeCompleted
	case isValidationFailure(err):
		return OutcomeRejected
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeError
	}
}
