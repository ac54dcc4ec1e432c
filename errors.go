package safeaction

import "errors"

// Sentinel errors for safeaction. Use errors.Is to check.
//
// Both are faults in the wiring of a schema, not validation outcomes:
// input that merely violates a schema never produces an error, it
// produces a ValidationError value (see Outcome).
var (
	// ErrSchemaGenerate wraps failures to derive a JSON Schema from a
	// Go type in ForStruct (e.g. an unsupported field type).
	ErrSchemaGenerate = errors.New("schema generation failed")

	// ErrSchemaCompile wraps failures to compile a schema document in
	// ForStruct or ForMap (e.g. a malformed raw schema map).
	ErrSchemaCompile = errors.New("schema compilation failed")
)
