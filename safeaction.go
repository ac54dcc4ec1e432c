package safeaction

import (
	"context"

	"github.com/skosovsky/safeaction/future"
)

// Schema is the contract for a validatable schema. It is
// validator-agnostic (no knowledge of one concrete schema library).
//
// Parse checks input against the schema. The three results are mutually
// exclusive in meaning:
//   - (value, nil, nil): input is valid; value is the validated and
//     possibly normalized form (coerced, defaulted, or with unknown
//     fields stripped) that the dispatcher forwards to the handler.
//   - (_, issues, nil) with len(issues) > 0: input violates the schema.
//     Issues are reported in validator order. This is an expected
//     outcome, not a fault.
//   - (_, _, err) with err != nil: the validator itself malfunctioned
//     (e.g. a broken schema definition). The dispatcher does not catch
//     or translate this; it propagates to the caller as a fault.
//
// ForStruct and ForMap provide ready-made implementations backed by a
// JSON Schema compiler.
type Schema[T any] interface {
	Parse(ctx context.Context, input any) (T, []Issue, error)
}

// Handler is the target operation wrapped by New. It runs only after
// its input passed schema validation. Errors it returns surface on the
// future's error channel untouched.
type Handler[T any, R any] func(ctx context.Context, input T) (R, error)

// Action is a wrapped operation produced by New. It keeps the target's
// one-input-value invocation surface and always resolves through a
// future, so callers wait the same way whether validation failed or the
// handler ran, and whether either was synchronous or not.
type Action[R any] func(ctx context.Context, input any) *future.Future[Outcome[R]]

// Outcome is the result of one Action invocation: a tagged union of the
// two normal completions. Exactly one side is meaningful.
//
// Invalid != nil means validation rejected the input and the handler
// never ran; Value holds R's zero value. Invalid == nil means the
// handler ran and Value is its result, unmodified.
//
// Faults (validator malfunction, handler error or panic) do not
// produce an Outcome at all; they arrive on the future's error channel.
type Outcome[R any] struct {
	Invalid *ValidationError
	Value   R
}

// Rejected reports whether this outcome is a validation rejection.
// Equivalent to o.Invalid != nil.
func (o Outcome[R]) Rejected() bool { return o.Invalid != nil }
