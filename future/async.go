package future

import (
	"context"
	"fmt"
)

// PanicError wraps a panic value recovered inside Go or GoContext so it
// surfaces on the future's error channel instead of crashing the
// process. Value is the recovered panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return "panic: " + fmt.Sprint(e.Value)
}

// Go runs fn in a new goroutine and returns a future for its result.
// A panic inside fn is recovered and fails the future with *PanicError.
func Go[T any](fn func() (T, error)) *Future[T] {
	fut, promise := New[T]()
	go func() {
		defer func() {
			if p := recover(); p != nil {
				promise.Failure(&PanicError{Value: p})
			}
		}()
		promise.Complete(fn())
	}()
	return fut
}

// GoContext runs fn in a new goroutine with the given context and
// returns a future for its result. The context is passed through to fn;
// whether cancellation terminates the work early is up to fn. Panic
// handling matches Go.
func GoContext[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	fut, promise := New[T]()
	go func() {
		defer func() {
			if p := recover(); p != nil {
				promise.Failure(&PanicError{Value: p})
			}
		}()
		promise.Complete(fn(ctx))
	}()
	return fut
}

// Resolved returns a future already completed with value.
func Resolved[T any](value T) *Future[T] {
	fut, promise := New[T]()
	promise.Success(value)
	return fut
}

// Failed returns a future already failed with err.
func Failed[T any](err error) *Future[T] {
	fut, promise := New[T]()
	promise.Failure(err)
	return fut
}
