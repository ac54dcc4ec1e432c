package safeaction

import (
	"context"
	"time"

	"github.com/skosovsky/safeaction/future"
)

// New wraps handler with a validation gate: the returned Action parses
// its input through schema and invokes handler only when validation
// passes, forwarding the schema's normalized output. On rejection the
// handler is never invoked (none of its side effects occur) and the
// action resolves to an Outcome carrying a ValidationError value.
//
// The action always resolves through a future, so callers have one
// waiting protocol regardless of which path ran. Faults — a validator
// malfunction, a handler error, or a handler panic (surfaced as
// *future.PanicError) — arrive on the future's error channel and are
// never converted to ValidationError.
//
// Each invocation is independent: no state is shared between calls and
// any number may run concurrently. schema and handler must not be nil;
// New panics otherwise, since that is a wiring error, not a runtime
// condition.
func New[T any, R any](schema Schema[T], handler Handler[T, R], opts ...Option) Action[R] {
	if schema == nil {
		panic("safeaction: New schema must not be nil")
	}
	if handler == nil {
		panic("safeaction: New handler must not be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return func(ctx context.Context, input any) *future.Future[Outcome[R]] {
		return future.GoContext(ctx, func(ctx context.Context) (Outcome[R], error) {
			return dispatch(ctx, schema, handler, &o, input)
		})
	}
}

// dispatch runs one invocation: parse, branch, forward. It is the whole
// pipeline; there is no state beyond its locals.
func dispatch[T any, R any](
	ctx context.Context,
	schema Schema[T],
	handler Handler[T, R],
	o *options,
	input any,
) (Outcome[R], error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	start := time.Now()
	if o.logger != nil {
		o.logger.Info("action start")
	}

	value, issues, err := schema.Parse(ctx, input)
	if err != nil {
		// Validator malfunction (e.g. broken schema wiring): propagate untranslated.
		return Outcome[R]{}, err
	}
	if len(issues) > 0 {
		verr := NewValidationError(issues)
		if o.logger != nil {
			o.logger.Info("action rejected", "issues", len(verr.Errors), "duration", time.Since(start))
		}
		if o.onReject != nil {
			o.onReject(ctx, verr)
		}
		return Outcome[R]{Invalid: verr}, nil
	}

	result, err := handler(ctx, value)
	if err != nil {
		if o.logger != nil {
			o.logger.Error("action error", "duration", time.Since(start), "error", err)
		}
		return Outcome[R]{}, err
	}
	if o.logger != nil {
		o.logger.Info("action end", "duration", time.Since(start))
	}
	return Outcome[R]{Value: result}, nil
}
