package pipeline

import (
	"context"
	"log/slog"

	"github.com/juju/clock"

	"github.com/asidocente/school-records/internal/application/validation"
	"github.com/asidocente/school-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOGGING
// ══════════════════════════════════════════════════════════════════════════════

// Logging records the request name, id, duration and outcome. It never
// rejects or alters a request. Handlers find the enriched logger in ctx.
func Logging(log *slog.Logger, clk clock.Clock) Behavior {
	if log == nil {
		log = slog.Default()
	}
	if clk == nil {
		clk = clock.WallClock
	}

	return func(ctx context.Context, info Info, req any, next Next) (any, error) {
		reqLog := log.With(
			slog.String("request", info.Name),
			slog.String("request_id", info.ID),
		)
		ctx = logger.WithContext(ctx, reqLog)

		reqLog.DebugContext(ctx, "handling request")
		start := clk.Now()

		out, err := next(ctx)

		elapsed := clk.Now().Sub(start)
		outcome := Classify(out, err)
		attrs := []any{
			slog.String("outcome", string(outcome)),
			slog.Duration("duration", elapsed),
		}

		switch outcome {
		case OutcomeCompleted:
			reqLog.InfoContext(ctx, "request completed", attrs...)
		case OutcomeFailure:
			if r, ok := out.(interface{ Error() string }); ok {
				attrs = append(attrs, slog.String("failure", r.Error()))
			}
			reqLog.InfoContext(ctx, "request completed with failure", attrs...)
		case OutcomeRejected:
			if ve, ok := validation.AsError(err); ok {
				attrs = append(attrs, slog.Any("errors", ve.Fields))
			}
			reqLog.WarnContext(ctx, "request rejected", attrs...)
		case OutcomeCancelled:
			reqLog.InfoContext(ctx, "request cancelled", append(attrs, slog.Any("error", err))...)
		default:
			reqLog.ErrorContext(ctx, "request failed", append(attrs, slog.Any("error", err))...)
		}

		return out, err
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// Validation runs the request's static rule set and short-circuits with a
// *validation.Error when anything fails. The handler is not invoked then.
func Validation(v *validation.Validator) Behavior {
	return func(ctx context.Context, info Info, req any, next Next) (any, error) {
		if err := v.Validate(req); err != nil {
			return nil, err
		}
		return next(ctx)
	}
}

func isValidationFailure(err error) bool {
	_, ok := validation.AsError(err)
	return ok
}
