package safeaction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"

	"github.com/invopop/jsonschema"
	jsv "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TypedSchema is a Schema[T] backed by a JSON Schema derived from T via
// reflection (json and jsonschema struct tags). Build one with ForStruct.
type TypedSchema[T any] struct {
	schemaMap map[string]any
	compiled  *jsv.Schema
}

// ForStruct derives a JSON Schema from type T and compiles it. Fields
// are described by their json tags and constrained by jsonschema tags
// (e.g. `jsonschema:"minLength=4"`); fields without omitempty are
// required. Returns an error wrapping ErrSchemaGenerate or
// ErrSchemaCompile when T cannot be expressed or compiled.
func ForStruct[T any](opts ...SchemaOption) (*TypedSchema[T], error) {
	var o schemaOptions
	for _, opt := range opts {
		opt(&o)
	}
	reflector := &jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: !o.strict,
	}
	schema := reflector.Reflect(new(T))
	if schema == nil {
		return nil, fmt.Errorf("%w: reflection returned nil", ErrSchemaGenerate)
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaGenerate, err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(data, &schemaMap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaGenerate, err)
	}
	stripSchemaIDs(schemaMap)
	compiled, err := compileRawSchema(schemaMap)
	if err != nil {
		return nil, err
	}
	return &TypedSchema[T]{schemaMap: schemaMap, compiled: compiled}, nil
}

// JSONSchema returns a shallow copy of the schema document (top-level
// keys only). Nested maps are shared; callers must not mutate them.
func (s *TypedSchema[T]) JSONSchema() map[string]any { return maps.Clone(s.schemaMap) }

// Parse implements Schema[T]. Input may be a decoded value, a []byte /
// json.RawMessage payload, or any JSON-marshalable Go value. Malformed
// JSON is reported as an issue, not a fault. The normalized output is
// the input decoded into T, so unknown fields are stripped unless the
// schema was built with WithStrict (which rejects them instead).
func (s *TypedSchema[T]) Parse(_ context.Context, input any) (T, []Issue, error) {
	var zero T
	raw, decoded, malformed, err := decodeInput(input)
	if err != nil {
		return zero, nil, err
	}
	if malformed != nil {
		return zero, []Issue{*malformed}, nil
	}
	if verr := s.compiled.Validate(decoded); verr != nil {
		issues, ok := issuesFromError(verr)
		if !ok {
			return zero, nil, verr
		}
		return zero, issues, nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, []Issue{{Path: []any{}, Message: "json parse error: " + err.Error()}}, nil
	}
	return out, nil, nil
}

// DynamicSchema is a Schema[map[string]any] compiled from a raw JSON
// Schema map supplied at runtime (e.g. loaded from an API contract).
// Build one with ForMap.
type DynamicSchema struct {
	schemaMap map[string]any
	compiled  *jsv.Schema
}

// ForMap compiles a caller-supplied JSON Schema map describing an
// object. The map is deep-copied before any modification (WithStrict,
// $id stripping), so the caller's map is never mutated. Returns an
// error wrapping ErrSchemaCompile if the document does not compile.
func ForMap(schemaMap map[string]any, opts ...SchemaOption) (*DynamicSchema, error) {
	var o schemaOptions
	for _, opt := range opts {
		opt(&o)
	}
	if schemaMap == nil {
		return nil, fmt.Errorf("%w: schema map must not be nil", ErrSchemaCompile)
	}
	data, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaCompile, err)
	}
	var schemaCopy map[string]any
	if err := json.Unmarshal(data, &schemaCopy); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaCompile, err)
	}
	if o.strict {
		applyStrictMode(schemaCopy)
	}
	stripSchemaIDs(schemaCopy)
	compiled, err := compileRawSchema(schemaCopy)
	if err != nil {
		return nil, err
	}
	return &DynamicSchema{schemaMap: schemaCopy, compiled: compiled}, nil
}

// JSONSchema returns a shallow copy of the schema document (top-level
// keys only). Nested maps are shared; callers must not mutate them.
func (s *DynamicSchema) JSONSchema() map[string]any { return maps.Clone(s.schemaMap) }

// Parse implements Schema[map[string]any]. Input handling matches
// TypedSchema.Parse. Valid input that is not a JSON object (possible
// when the schema permits non-objects) is reported as an issue, since
// the normalized output type is an object.
func (s *DynamicSchema) Parse(_ context.Context, input any) (map[string]any, []Issue, error) {
	raw, decoded, malformed, err := decodeInput(input)
	if err != nil {
		return nil, nil, err
	}
	if malformed != nil {
		return nil, []Issue{*malformed}, nil
	}
	if verr := s.compiled.Validate(decoded); verr != nil {
		issues, ok := issuesFromError(verr)
		if !ok {
			return nil, nil, verr
		}
		return nil, issues, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, []Issue{{Path: []any{}, Message: "input is not an object"}}, nil
	}
	return out, nil, nil
}

// decodeInput turns an action input into its raw JSON bytes plus the
// decoded document used for validation. []byte and json.RawMessage are
// taken as-is; any other value is marshaled first. Malformed JSON is a
// reported issue (expected outcome); a value that cannot be represented
// as JSON at all (e.g. contains a channel) is a fault.
func decodeInput(input any) (raw []byte, decoded any, malformed *Issue, err error) {
	switch v := input.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		raw, err = json.Marshal(input)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	decoded, err = jsv.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, &Issue{Path: []any{}, Message: "json parse error: " + err.Error()}, nil
	}
	return raw, decoded, nil, nil
}

// compileRawSchema compiles a raw JSON Schema map. The map is not mutated.
func compileRawSchema(schemaMap map[string]any) (*jsv.Schema, error) {
	data, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaCompile, err)
	}
	doc, err := jsv.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaCompile, err)
	}
	compiler := jsv.NewCompiler()
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaCompile, err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaCompile, err)
	}
	return compiled, nil
}

// walkSchema recursively visits every map node in the schema tree
// (including $defs and definitions).
func walkSchema(schemaMap map[string]any, visit func(map[string]any)) {
	if schemaMap == nil {
		return
	}
	visit(schemaMap)
	for _, val := range schemaMap {
		switch v := val.(type) {
		case map[string]any:
			walkSchema(v, visit)
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					walkSchema(m, visit)
				}
			}
		}
	}
}

// applyStrictMode sets additionalProperties: false for every object in the schema.
func applyStrictMode(schemaMap map[string]any) {
	walkSchema(schemaMap, func(n map[string]any) {
		if _, isObj := n["properties"]; isObj {
			n["additionalProperties"] = false
		}
	})
}

// stripSchemaIDs removes id and $id from the schema so resolution does
// not depend on them.
func stripSchemaIDs(schemaMap map[string]any) {
	walkSchema(schemaMap, func(n map[string]any) {
		delete(n, "id")
		delete(n, "$id")
	})
}

// issuePrinter localizes validator messages. The validator's message
// catalog is English-only today; the printer keeps the call site stable
// if that changes.
var issuePrinter = message.NewPrinter(language.English)

// issuesFromError converts a validator error into ordered issues.
// ok is false when err is not a validation mismatch (validator
// malfunction); the caller must propagate it as a fault.
func issuesFromError(err error) ([]Issue, bool) {
	var verr *jsv.ValidationError
	if !errors.As(err, &verr) {
		return nil, false
	}
	var issues []Issue
	collectIssues(verr, &issues)
	if len(issues) == 0 {
		issues = append(issues, Issue{Path: pathSegments(verr.InstanceLocation), Message: verr.Error()})
	}
	return issues, true
}

// collectIssues appends one issue per leaf cause, preserving the
// validator's reporting order.
func collectIssues(verr *jsv.ValidationError, out *[]Issue) {
	if len(verr.Causes) == 0 {
		*out = append(*out, Issue{
			Path:    pathSegments(verr.InstanceLocation),
			Message: verr.ErrorKind.LocalizedString(issuePrinter),
		})
		return
	}
	for _, cause := range verr.Causes {
		collectIssues(cause, out)
	}
}

// pathSegments converts instance-location tokens into path segments:
// purely numeric tokens become int array indexes, the rest stay object
// keys. A numeric object key is indistinguishable from an index here
// and becomes an int.
func pathSegments(tokens []string) []any {
	segs := make([]any, 0, len(tokens))
	for _, tok := range tokens {
		if idx, err := strconv.Atoi(tok); err == nil && idx >= 0 {
			segs = append(segs, idx)
			continue
		}
		segs = append(segs, tok)
	}
	return segs
}

var (
	_ Schema[struct{}]       = (*TypedSchema[struct{}])(nil)
	_ Schema[map[string]any] = (*DynamicSchema)(nil)
)
