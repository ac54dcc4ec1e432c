package safeaction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skosovsky/safeaction/future"
)

// stubSchema is a canned Schema for dispatch tests: returns err if set,
// then issues if set, otherwise output as the normalized value.
type stubSchema[T any] struct {
	output T
	issues []Issue
	err    error

	mu    sync.Mutex
	calls int
}

func (s *stubSchema[T]) Parse(_ context.Context, _ any) (T, []Issue, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	var zero T
	if s.err != nil {
		return zero, nil, s.err
	}
	if len(s.issues) > 0 {
		return zero, s.issues, nil
	}
	return s.output, nil, nil
}

func (s *stubSchema[T]) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestNew_ValidInput_ForwardsNormalizedValue(t *testing.T) {
	schema := &stubSchema[int]{output: 42}
	var mu sync.Mutex
	var got []int
	action := New(schema, func(_ context.Context, n int) (string, error) {
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
		return "done", nil
	})

	out, err := action(context.Background(), map[string]any{"raw": "input"}).Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Rejected())
	assert.Equal(t, "done", out.Value)
	// Handler ran exactly once, with the schema's normalized output
	// rather than the raw input.
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, 42, got[0])
	assert.Equal(t, 1, schema.Calls())
}

func TestNew_InvalidInput_HandlerNotInvoked(t *testing.T) {
	issues := []Issue{
		{Path: []any{"name"}, Message: "too short"},
		{Path: []any{"age"}, Message: "must be positive"},
	}
	schema := &stubSchema[int]{issues: issues}
	handlerCalls := 0
	action := New(schema, func(_ context.Context, _ int) (string, error) {
		handlerCalls++
		return "done", nil
	})

	out, err := action(context.Background(), map[string]any{"name": "ab"}).Wait(context.Background())
	require.NoError(t, err)
	require.True(t, out.Rejected())
	assert.True(t, IsValidationError(out.Invalid))
	// Issues are passed through unmodified, in validator order.
	assert.Equal(t, issues, out.Invalid.Errors)
	assert.Empty(t, out.Value)
	assert.Zero(t, handlerCalls)
}

func TestNew_ValidatorMalfunction_PropagatesAsFault(t *testing.T) {
	errBroken := errors.New("schema wiring is broken")
	schema := &stubSchema[int]{err: errBroken}
	handlerCalls := 0
	action := New(schema, func(_ context.Context, _ int) (string, error) {
		handlerCalls++
		return "", nil
	})

	out, err := action(context.Background(), nil).Wait(context.Background())
	require.ErrorIs(t, err, errBroken)
	assert.False(t, out.Rejected())
	assert.False(t, IsValidationError(out.Invalid))
	assert.Zero(t, handlerCalls)
}

func TestNew_HandlerError_PassesThrough(t *testing.T) {
	errBoom := errors.New("boom")
	action := New(&stubSchema[int]{output: 7}, func(_ context.Context, _ int) (string, error) {
		return "", errBoom
	})

	_, err := action(context.Background(), nil).Wait(context.Background())
	require.ErrorIs(t, err, errBoom)
	assert.False(t, IsValidationError(err))
}

func TestNew_HandlerPanic_SurfacesAsPanicError(t *testing.T) {
	action := New(&stubSchema[int]{output: 7}, func(_ context.Context, _ int) (string, error) {
		panic("unexpected")
	})

	_, err := action(context.Background(), nil).Wait(context.Background())
	require.Error(t, err)
	var perr *future.PanicError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "unexpected", perr.Value)
}

func TestNew_SynchronousWork_StillResolvesThroughFuture(t *testing.T) {
	// Both schema and handler are synchronous; the caller still waits on
	// a future, same as any other invocation.
	action := New(&stubSchema[int]{output: 1}, func(_ context.Context, n int) (int, error) {
		return n + 1, nil
	})
	fut := action(context.Background(), nil)
	select {
	case <-fut.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("future never resolved")
	}
	out, err, ok := fut.Result()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Value)
}

func TestNew_ConcurrentInvocations_ResolveIndependently(t *testing.T) {
	// One shared action, many concurrent calls, mixed valid and invalid
	// inputs. Each must resolve on its own, regardless of completion order.
	schema := &stubSchema[string]{output: "norm"}
	rejecting := &stubSchema[string]{issues: []Issue{{Path: []any{}, Message: "nope"}}}

	okAction := New(schema, func(_ context.Context, s string) (string, error) {
		return s + "!", nil
	})
	badAction := New(rejecting, func(_ context.Context, s string) (string, error) {
		return s + "!", nil
	})

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				out, err := okAction(context.Background(), i).Wait(context.Background())
				assert.NoError(t, err)
				assert.Equal(t, "norm!", out.Value)
				return
			}
			out, err := badAction(context.Background(), i).Wait(context.Background())
			assert.NoError(t, err)
			assert.True(t, out.Rejected())
		}()
	}
	wg.Wait()
}

func TestNew_NilSchemaOrHandler_Panics(t *testing.T) {
	assert.Panics(t, func() {
		New[int, string](nil, func(_ context.Context, _ int) (string, error) { return "", nil })
	})
	assert.Panics(t, func() {
		New[int, string](&stubSchema[int]{}, nil)
	})
}

func TestNew_WithTimeout_CancelsHandlerContext(t *testing.T) {
	action := New(&stubSchema[int]{output: 1}, func(ctx context.Context, _ int) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}, WithTimeout(20*time.Millisecond))

	_, err := action(context.Background(), nil).Wait(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_WithOnReject_SeesRejection(t *testing.T) {
	issues := []Issue{{Path: []any{"name"}, Message: "too short"}}
	var mu sync.Mutex
	var seen *ValidationError
	action := New(&stubSchema[int]{issues: issues}, func(_ context.Context, _ int) (string, error) {
		return "", nil
	}, WithOnReject(func(_ context.Context, verr *ValidationError) {
		mu.Lock()
		seen = verr
		mu.Unlock()
	}))

	out, err := action(context.Background(), nil).Wait(context.Background())
	require.NoError(t, err)
	require.True(t, out.Rejected())
	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, seen)
	assert.Equal(t, issues, seen.Errors)
}

func TestNew_WithLogger_DoesNotAlterOutcome(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	action := New(&stubSchema[int]{output: 5}, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	}, WithLogger(logger))
	out, err := action(context.Background(), nil).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, out.Value)

	rejected := New(&stubSchema[int]{issues: []Issue{{Message: "nope"}}}, func(_ context.Context, _ int) (int, error) {
		return 0, nil
	}, WithLogger(logger))
	out, err = rejected(context.Background(), nil).Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Rejected())
}
