package service

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunner struct {
	calls    atomic.Int32
	deadline atomic.Bool
}

func (f *fakeRunner) Run(ctx context.Context) (*RunReport, error) {
	f.calls.Add(1)
	if _, ok := ctx.Deadline(); ok {
		f.deadline.Store(true)
	}
	return &RunReport{RunID: "test", Outcome: "no_new_releases"}, nil
}

func newTestScheduler(t *testing.T, runner PipelineRunner) (*Scheduler, string) {
	t.Helper()

	lockPath := filepath.Join(t.TempDir(), "pipeline.lock")
	scheduler, err := NewScheduler(runner, SchedulerConfig{
		LockPath: lockPath,
		Timeout:  time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)

	return scheduler, lockPath
}

func TestScheduler_RunNow(t *testing.T) {
	runner := &fakeRunner{}
	scheduler, _ := newTestScheduler(t, runner)

	report, err := scheduler.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", report.RunID)
	assert.Equal(t, int32(1), runner.calls.Load())
	assert.True(t, runner.deadline.Load())

	// Блокировка освобождается после запуска
	_, err = scheduler.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestScheduler_RunNowSkipsWhenLocked(t *testing.T) {
	runner := &fakeRunner{}
	scheduler, lockPath := newTestScheduler(t, runner)

	other := flock.New(lockPath)
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = other.Unlock() }()

	_, err = scheduler.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Zero(t, runner.calls.Load())
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler, _ := newTestScheduler(t, &fakeRunner{})

	assert.True(t, scheduler.NextRun().IsZero())

	require.NoError(t, scheduler.Start())
	assert.Error(t, scheduler.Start())

	next := scheduler.NextRun()
	assert.False(t, next.IsZero())
	assert.Equal(t, time.Sunday, next.In(time.UTC).Weekday())
	assert.Equal(t, 12, next.In(time.UTC).Hour())
	assert.Equal(t, true, scheduler.GetStatus()["running"])

	scheduler.Stop()
	scheduler.Stop()
	assert.Equal(t, false, scheduler.GetStatus()["running"])
}

func TestNewScheduler_Validation(t *testing.T) {
	_, err := NewScheduler(&fakeRunner{}, SchedulerConfig{Schedule: "not a cron", LockPath: "x.lock"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewScheduler(&fakeRunner{}, SchedulerConfig{}, zap.NewNop())
	assert.Error(t, err)
}
