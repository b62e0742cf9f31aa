package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/catalog"
)

// DueChecker lists the loans inside the due window.
type DueChecker interface {
	DueSoon(ctx context.Context) ([]catalog.DueLoan, error)
}

// ReminderRecorder records the outcome of a due check.
type ReminderRecorder interface {
	LogReminder(due []catalog.DueLoan, err error)
}

// DueRemindersTask checks the loaned table for books due soon.
type DueRemindersTask struct {
	RequestedAt time.Time `json:"requested_at"`
}

// Config returns the queue configuration for due reminder tasks.
func (t DueRemindersTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "due_reminders",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// DueRemindersProcessor creates a processor function for DueRemindersTask.
// Each loan inside the window is logged at warn level; overdue loans at error.
// recorder may be nil.
func DueRemindersProcessor(checker DueChecker, recorder ReminderRecorder, logger *zap.Logger) backlite.QueueProcessor[DueRemindersTask] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task DueRemindersTask) error {
		if checker == nil {
			return fmt.Errorf("due checker not configured")
		}

		due, err := checker.DueSoon(ctx)
		if recorder != nil {
			recorder.LogReminder(due, err)
		}
		if err != nil {
			return fmt.Errorf("check due loans: %w", err)
		}

		for _, d := range due {
			fields := []zap.Field{
				zap.String("title", d.Title),
				zap.String("borrower", d.Borrower),
				zap.Time("due_at", d.DueAt),
				zap.Float64("days_left", d.DaysLeft),
			}
			if d.DaysLeft < 0 {
				logger.Error("book overdue", fields...)
				continue
			}
			logger.Warn("book due soon", fields...)
		}
		logger.Info("due check finished", zap.Int("due", len(due)), zap.Time("requested_at", task.RequestedAt))
		return nil
	}
}

// NewDueRemindersQueue creates a backlite queue for due reminder tasks.
func NewDueRemindersQueue(checker DueChecker, recorder ReminderRecorder, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(DueRemindersProcessor(checker, recorder, logger))
}
