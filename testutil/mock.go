// Package testutil provides test helpers for safeaction (e.g. MockSchema).
package testutil

import (
	"context"
	"sync"

	"github.com/skosovsky/safeaction"
)

// MockSchema is a configurable Schema implementation for tests.
// When ParseFn is set it takes over completely; otherwise Parse returns
// Issues/Err when set, else Output as the validated value. Every call
// is recorded and retrievable via Inputs.
type MockSchema[T any] struct {
	ParseFn func(ctx context.Context, input any) (T, []safeaction.Issue, error)
	Output  T
	Issues  []safeaction.Issue
	Err     error

	mu     sync.Mutex
	inputs []any
}

// Parse implements safeaction.Schema.
func (m *MockSchema[T]) Parse(ctx context.Context, input any) (T, []safeaction.Issue, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()
	if m.ParseFn != nil {
		return m.ParseFn(ctx, input)
	}
	var zero T
	if m.Err != nil {
		return zero, nil, m.Err
	}
	if len(m.Issues) > 0 {
		return zero, m.Issues, nil
	}
	return m.Output, nil, nil
}

// Inputs returns a copy of every input Parse has been called with, in order.
func (m *MockSchema[T]) Inputs() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.inputs...)
}

// Calls returns how many times Parse has been called.
func (m *MockSchema[T]) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// RecordingHandler wraps a handler and records every input it was
// invoked with, for asserting exactly-once (or never) invocation.
type RecordingHandler[T any, R any] struct {
	Fn func(ctx context.Context, input T) (R, error)

	mu     sync.Mutex
	inputs []T
}

// Handle is the safeaction.Handler to pass to New.
func (r *RecordingHandler[T, R]) Handle(ctx context.Context, input T) (R, error) {
	r.mu.Lock()
	r.inputs = append(r.inputs, input)
	r.mu.Unlock()
	if r.Fn != nil {
		return r.Fn(ctx, input)
	}
	var zero R
	return zero, nil
}

// Inputs returns a copy of every input Handle received, in order.
func (r *RecordingHandler[T, R]) Inputs() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.inputs...)
}

// Calls returns how many times Handle was invoked.
func (r *RecordingHandler[T, R]) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inputs)
}

// Ensure MockSchema implements Schema.
var _ safeaction.Schema[struct{}] = (*MockSchema[struct{}])(nil)
