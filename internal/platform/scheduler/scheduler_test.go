package scheduler

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Start()
	t.Cleanup(func() { s.Stop(time.Second) })
	return s
}

func TestScheduler_Every_Validation(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)

	tests := []struct {
		name     string
		interval time.Duration
		job      func()
	}{
		{"zero interval", 0, func() {}},
		{"negative interval", -time.Second, func() {}},
		{"nil job", time.Second, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cancel, err := s.Every(tt.interval, tt.job)
			assert.Error(t, err)
			assert.Nil(t, cancel)
		})
	}
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_Every_FiresAndCancels(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)

	var calls atomic.Int32
	cancel, err := s.Every(time.Second, func() { calls.Add(1) })
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	cancel()
	cancel() // 2回目は何もしない
	assert.Equal(t, 0, s.Len())

	after := calls.Load()
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
}

func TestScheduler_RecoversPanic(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)

	var calls atomic.Int32
	cancel, err := s.Every(time.Second, func() {
		calls.Add(1)
		panic(errors.New("boom"))
	})
	require.NoError(t, err)
	defer cancel()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 4*time.Second, 20*time.Millisecond)
}

func TestScheduler_EveryAfterStop(t *testing.T) {
	t.Parallel()

	s := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Start()
	s.Stop(time.Second)

	cancel, err := s.Every(time.Second, func() {})
	assert.ErrorIs(t, err, ErrStopped)
	assert.Nil(t, cancel)
}
