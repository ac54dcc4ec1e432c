// Package future provides a minimal future/promise pair: a Future is
// the read side of a single asynchronous completion, a Promise is its
// write side. A future completes exactly once, with either a value or
// an error, and every waiter observes the same result.
package future

import (
	"context"
	"sync"
)

// Future is the consumer side of an asynchronous computation. Obtain
// one from New (paired with its Promise) or from Go, GoContext,
// Resolved, or Failed.
//
// All methods are safe for concurrent use. The zero value is not
// usable; futures must come from a constructor.
type Future[T any] struct {
	mu    sync.Mutex
	once  sync.Once
	ready chan struct{}
	value T
	err   error

	onSuccess []func(T)
	onError   []func(error)
	onResult  []func(T, error)
}

// New creates an unfulfilled Future and the Promise that completes it.
// The promise holds a reference to the future, not the other way
// around, so futures can be handed out without exposing completion.
func New[T any]() (*Future[T], *Promise[T]) {
	f := &Future[T]{ready: make(chan struct{})}
	return f, newPromise(f)
}

// Done returns a channel that is closed when the future completes.
// Useful in select statements alongside other channels.
func (f *Future[T]) Done() <-chan struct{} { return f.ready }

// Wait blocks until the future completes or ctx is done, whichever
// comes first. On completion it returns the future's value and error;
// on context expiry it returns ctx.Err(). The future itself is not
// cancelled by ctx — a later Wait can still observe its result.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.ready:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the completed value and error without blocking.
// ok is false while the future is still pending.
func (f *Future[T]) Result() (value T, err error, ok bool) {
	select {
	case <-f.ready:
		return f.value, f.err, true
	default:
		return value, nil, false
	}
}

// OnSuccess registers cb to run with the value when the future
// completes successfully. If the future already completed, cb runs
// immediately. Callbacks run in their own goroutine and must not be
// relied on for ordering.
func (f *Future[T]) OnSuccess(cb func(T)) {
	f.mu.Lock()
	if f.completedLocked() {
		f.mu.Unlock()
		if f.err == nil {
			go cb(f.value)
		}
		return
	}
	f.onSuccess = append(f.onSuccess, cb)
	f.mu.Unlock()
}

// OnError registers cb to run with the error when the future fails.
// Same immediacy and goroutine semantics as OnSuccess.
func (f *Future[T]) OnError(cb func(error)) {
	f.mu.Lock()
	if f.completedLocked() {
		f.mu.Unlock()
		if f.err != nil {
			go cb(f.err)
		}
		return
	}
	f.onError = append(f.onError, cb)
	f.mu.Unlock()
}

// OnResult registers cb to run with the value and error on completion,
// success or failure. Same immediacy and goroutine semantics as
// OnSuccess.
func (f *Future[T]) OnResult(cb func(T, error)) {
	f.mu.Lock()
	if f.completedLocked() {
		f.mu.Unlock()
		go cb(f.value, f.err)
		return
	}
	f.onResult = append(f.onResult, cb)
	f.mu.Unlock()
}

// completedLocked reports completion; caller holds f.mu. fulfill closes
// ready while holding the same lock, so the read is consistent.
func (f *Future[T]) completedLocked() bool {
	select {
	case <-f.ready:
		return true
	default:
		return false
	}
}
