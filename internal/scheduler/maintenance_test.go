package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.Error(t, ValidateSchedule("not a schedule"))
	assert.Error(t, ValidateSchedule("0 0 3 * * *"), "seconds field is not accepted")
}

func TestMaintenanceScheduler_InvalidSchedule(t *testing.T) {
	s := NewMaintenanceScheduler(Job{
		Name:     "purge",
		Schedule: "every night",
		Run:      func(context.Context) error { return nil },
	})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purge")
	assert.False(t, s.IsRunning())
}

func TestMaintenanceScheduler_StartStop(t *testing.T) {
	s := NewMaintenanceScheduler(
		Job{Name: "purge", Schedule: "0 3 * * *", Run: func(context.Context) error { return nil }},
		Job{Name: "audit", Schedule: "", Run: func(context.Context) error { return nil }},
	)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.NextRunTime("purge")
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.Nil(t, s.NextRunTime("audit"), "empty schedule is not registered")

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime("purge"))
}

func TestMaintenanceScheduler_StopsOnContextCancel(t *testing.T) {
	s := NewMaintenanceScheduler(Job{Name: "purge", Schedule: "0 3 * * *", Run: func(context.Context) error { return nil }})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestMaintenanceScheduler_RunNow(t *testing.T) {
	calls := 0
	s := NewMaintenanceScheduler(
		Job{Name: "purge", Schedule: "0 3 * * *", Run: func(context.Context) error { calls++; return nil }},
		Job{Name: "broken", Run: func(context.Context) error { return errors.New("boom") }},
	)

	require.NoError(t, s.RunNow(context.Background(), "purge"))
	assert.Equal(t, 1, calls)

	assert.EqualError(t, s.RunNow(context.Background(), "broken"), "boom")
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}
