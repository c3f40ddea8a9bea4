package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcTask struct {
	name string
	fn   func(ctx context.Context) error
}

func (f funcTask) Run(ctx context.Context) error {
	return f.fn(ctx)
}

func (f funcTask) Name() string {
	return f.name
}

func TestRunOnce(t *testing.T) {
	boom := errors.New("boom")

	res := RunOnce(context.Background(), funcTask{name: "ok", fn: func(ctx context.Context) error { return nil }})
	assert.NoError(t, res.Err)
	assert.Equal(t, "ok", res.Task)

	res = RunOnce(context.Background(), funcTask{name: "err", fn: func(ctx context.Context) error { return boom }})
	assert.ErrorIs(t, res.Err, boom)
	assert.False(t, res.Panicked())

	res = RunOnce(context.Background(), funcTask{name: "panic", fn: func(ctx context.Context) error { panic("nil map") }})
	assert.ErrorIs(t, res.Err, ErrTaskPanic)
	assert.True(t, res.Panicked())
}

func TestLoop_SurvivesPanicAndStops(t *testing.T) {
	var runs atomic.Int32
	task := funcTask{name: "flaky", fn: func(ctx context.Context) error {
		n := runs.Add(1)
		if n%2 == 1 {
			panic("odd run")
		}
		return nil
	}}

	var mu sync.Mutex
	var results []Result
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		Loop(context.Background(), task, time.Millisecond, stop, func(r Result) {
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool { return runs.Load() >= 4 }, time.Second, time.Millisecond)
	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(results), 4)
	assert.True(t, results[0].Panicked())
	assert.NoError(t, results[1].Err)
}

func TestLoop_StopInterruptsWait(t *testing.T) {
	var runs atomic.Int32
	task := funcTask{name: "slow-cadence", fn: func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		Loop(context.Background(), task, time.Hour, stop, nil)
	}()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)
	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop should interrupt the wait between cycles")
	}
	assert.Equal(t, int32(1), runs.Load())
}

func TestLoop_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		Loop(ctx, funcTask{name: "noop", fn: func(ctx context.Context) error { return nil }}, time.Hour, nil, nil)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after cancel")
	}
}
