package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := NewScheduler("not a spec", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestNewScheduler_AcceptsDescriptorsAndSeconds(t *testing.T) {
	for _, spec := range []string{"@daily", "@every 1h", "0 0 6 * * *"} {
		_, err := NewScheduler(spec, func(context.Context) error { return nil })
		assert.NoError(t, err, spec)
	}
}

func TestScheduler_SkipsOverlappingTick(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int32
	s, err := NewScheduler("@daily", func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return nil
	})
	require.NoError(t, err)

	done := make(chan bool)
	go func() { done <- s.trigger(context.Background()) }()
	<-started

	assert.False(t, s.trigger(context.Background()))
	close(release)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestScheduler_FailedRunDoesNotStopSchedule(t *testing.T) {
	var calls int32
	s, err := NewScheduler("@daily", func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("upstream down")
	})
	require.NoError(t, err)

	assert.True(t, s.trigger(context.Background()))
	assert.True(t, s.trigger(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestScheduler_RunFiresAndStops(t *testing.T) {
	var calls int32
	s, err := NewScheduler("@every 1s", func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 1 }, 5*time.Second, 50*time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
