package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSchedulerRunsJobsUntilStopped(t *testing.T) {
	var runs int32
	s := New(nil)
	s.Register(Job{Name: "tick", Interval: 5 * time.Millisecond, Fn: func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}})

	s.Start(context.Background())
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, time.Second, time.Millisecond)
	s.Stop()

	task, err := s.GetTask("tick")
	require.NoError(t, err)
	assert.Equal(t, StatusFulfill, task.Status)
}

func TestParentContextStopsScheduler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(nil)
	s.Register(Job{Name: "slow", Interval: time.Hour, Fn: func(context.Context) error { return nil }})
	s.Start(ctx)
	cancel()
	s.Stop()
}

func TestRunRecordsFailure(t *testing.T) {
	s := New(nil)
	defer s.Stop()
	s.Register(Job{Name: "export", Interval: time.Hour, Fn: func(context.Context) error {
		return errors.New("bucket missing")
	}})

	require.NoError(t, s.Run("export"))
	require.Eventually(t, func() bool {
		task, _ := s.GetTask("export")
		return task.Status == StatusReject
	}, time.Second, time.Millisecond)

	task, _ := s.GetTask("export")
	assert.Equal(t, "bucket missing", task.Message)

	assert.ErrorIs(t, s.Run("nope"), ErrNotFound)
	_, err := s.GetTask("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListIsSortedByName(t *testing.T) {
	s := New(nil)
	defer s.Stop()
	noop := func(context.Context) error { return nil }
	s.Register(Job{Name: "b", Interval: time.Minute, Fn: noop})
	s.Register(Job{Name: "a", Interval: time.Minute, Fn: noop})

	items := s.List()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Name)
	assert.Equal(t, "1m0s", items[0].Interval)
	assert.Equal(t, StatusIdle, items[1].Status)
}
