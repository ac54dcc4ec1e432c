// Package safeaction wraps server-side operations with a schema
// validation gate, so raw caller input is checked (and normalized)
// before the operation runs.
//
// # Overview
//
// New takes a validatable schema and a handler and returns an Action:
// the same one-input operation, guarded. Invalid input never reaches
// the handler; instead the action resolves to a ValidationError value —
// plain data, not an error — carrying the validator's issues. The
// caller discriminates the two result shapes with IsValidationError (or
// the typed Outcome.Rejected check).
//
// Pipeline: raw input → Schema.Parse (validate + normalize) → handler →
// result, all resolved through one future so callers have a single
// waiting protocol whether validation failed or the handler ran.
//
// # Key concepts
//
//   - Rejections are values: a validation mismatch is expected, so it
//     travels the normal return channel and serializes cleanly across
//     process boundaries. Faults (a broken schema, a handler error or
//     panic) stay on the future's error channel, untranslated.
//   - Structural discrimination: IsValidationError is duck-typed over
//     the isValidationError tag, not bound to a Go type. A handler
//     result that legitimately matches the shape is indistinguishable
//     from a rejection; that ambiguity is the caller's to manage.
//   - Validator-agnostic: any Schema implementation works. ForStruct
//     (reflection from a Go type) and ForMap (raw schema document) are
//     provided.
//
// # Example
//
//	type SignupArgs struct {
//	    Name string `json:"name" jsonschema:"minLength=4"`
//	}
//	schema, err := safeaction.ForStruct[SignupArgs]()
//	if err != nil { ... }
//	signup := safeaction.New(schema, func(_ context.Context, a SignupArgs) (bool, error) {
//	    return true, nil
//	})
//	out, err := signup(ctx, map[string]any{"name": "abc"}).Wait(ctx)
//	if err != nil { ... }                      // fault
//	if out.Rejected() { ... out.Invalid ... }  // validation issues
//	_ = out.Value                              // handler result
package safeaction
