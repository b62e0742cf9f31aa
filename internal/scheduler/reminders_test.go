package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/tasks"
)

type mockQueue struct {
	mu    sync.Mutex
	tasks []backlite.Task
	err   error
}

func (m *mockQueue) Enqueue(ctx context.Context, t ...backlite.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.tasks = append(m.tasks, t...)
	return nil
}

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("0 9 * * *"))
	assert.NoError(t, ValidateCronSchedule("*/15 * * * *"))
	assert.Error(t, ValidateCronSchedule("every morning"))
	assert.Error(t, ValidateCronSchedule("0 0 9 * * *"))
}

func TestNextRunTime(t *testing.T) {
	from := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	next, err := NextRunTime("0 9 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), next)
}

func TestReminderScheduler_StartStop(t *testing.T) {
	s := NewReminderScheduler(&mockQueue{}, Config{Schedule: "0 9 * * *", CleanupSchedule: "0 3 * * *"}, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NotNil(t, s.GetNextRunTime())
	assert.Equal(t, 9, s.GetNextRunTime().Hour())

	// Second start is a no-op
	require.NoError(t, s.Start(context.Background()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestReminderScheduler_StopsOnContextCancel(t *testing.T) {
	s := NewReminderScheduler(&mockQueue{}, Config{Schedule: "0 9 * * *"}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestReminderScheduler_InvalidSchedule(t *testing.T) {
	s := NewReminderScheduler(&mockQueue{}, Config{Schedule: "sometimes"}, nil)
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())

	s = NewReminderScheduler(&mockQueue{}, Config{Schedule: "0 9 * * *", CleanupSchedule: "never"}, nil)
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestReminderScheduler_Enqueues(t *testing.T) {
	queue := &mockQueue{}
	s := NewReminderScheduler(queue, Config{Schedule: "0 9 * * *", RetentionDays: 30}, nil)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.RunNow(context.Background()))
	s.enqueueCleanup(context.Background())

	require.Len(t, queue.tasks, 2)
	assert.Equal(t, tasks.DueRemindersTask{RequestedAt: now}, queue.tasks[0])
	assert.Equal(t, tasks.CleanupAuditEventsTask{RetentionDays: 30}, queue.tasks[1])
}

func TestReminderScheduler_EnqueueFailureIsLogged(t *testing.T) {
	queue := &mockQueue{err: errors.New("database is locked")}
	s := NewReminderScheduler(queue, Config{Schedule: "0 9 * * *"}, nil)

	assert.Error(t, s.RunNow(context.Background()))
	assert.NotPanics(t, func() { s.enqueueReminder(context.Background()) })
}
