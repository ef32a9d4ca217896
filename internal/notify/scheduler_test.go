package notify

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) Run(context.Context) (Result, error) {
	r.runs.Add(1)
	return Result{}, nil
}

func TestScheduler_RunsUntilCanceled(t *testing.T) {
	runner := &countingRunner{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewScheduler(runner, 10*time.Millisecond).Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return runner.runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestScheduler_NoRunBeforeFirstTick(t *testing.T) {
	runner := &countingRunner{}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	NewScheduler(runner, time.Hour).Start(ctx)
	assert.Equal(t, int32(0), runner.runs.Load())
}
