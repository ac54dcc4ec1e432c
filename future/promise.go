package future

import "go.uber.org/atomic"

// Promise is the producer side of a Future. A promise can be fulfilled
// only once: the first call to Success, Failure, or Complete wins and
// later calls are ignored. Fulfillment is safe from any goroutine and
// unblocks every waiter on the associated future.
type Promise[T any] struct {
	future    *Future[T]
	completed *atomic.Bool
}

func newPromise[T any](f *Future[T]) *Promise[T] {
	return &Promise[T]{future: f, completed: atomic.NewBool(false)}
}

// IsCompleted reports whether the promise has been fulfilled.
func (p *Promise[T]) IsCompleted() bool { return p.completed.Load() }

// Success fulfills the promise with a value.
func (p *Promise[T]) Success(value T) { p.fulfill(value, nil) }

// Failure fulfills the promise with an error.
func (p *Promise[T]) Failure(err error) {
	var zero T
	p.fulfill(zero, err)
}

// Complete fulfills the promise with a (value, error) pair, matching a
// Go function's return shape: Complete(fn()) works directly.
func (p *Promise[T]) Complete(value T, err error) { p.fulfill(value, err) }

// fulfill stores the result, broadcasts completion by closing the ready
// channel, and fires registered callbacks. sync.Once makes it
// idempotent; the future's mutex is held across the close so callback
// registration never races with collection.
func (p *Promise[T]) fulfill(value T, err error) {
	p.future.once.Do(func() {
		f := p.future
		f.mu.Lock()
		f.value = value
		f.err = err
		close(f.ready)
		success := f.onSuccess
		failure := f.onError
		result := f.onResult
		f.onSuccess = nil
		f.onError = nil
		f.onResult = nil
		f.mu.Unlock()
		p.completed.Store(true)

		// Callbacks run in goroutines so a slow or blocking callback
		// cannot stall fulfillment or other callbacks.
		for _, cb := range result {
			go cb(value, err)
		}
		if err == nil {
			for _, cb := range success {
				go cb(value)
			}
			return
		}
		for _, cb := range failure {
			go cb(err)
		}
	})
}
