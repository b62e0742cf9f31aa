package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/tasks"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Enqueuer saves tasks for the worker pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, tasks ...backlite.Task) error
}

// Config holds the reminder schedules.
type Config struct {
	// Schedule is the cron expression for due checks.
	Schedule string
	// CleanupSchedule is the cron expression for audit cleanup. Empty disables it.
	CleanupSchedule string
	// RetentionDays is passed to each audit cleanup task.
	RetentionDays int
}

// ReminderScheduler periodically enqueues due checks and audit cleanups.
type ReminderScheduler struct {
	queue  Enqueuer
	config Config
	logger *zap.Logger
	now    func() time.Time

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewReminderScheduler creates a new scheduler instance
func NewReminderScheduler(queue Enqueuer, cfg Config, logger *zap.Logger) *ReminderScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderScheduler{
		queue:  queue,
		config: cfg,
		logger: logger,
		now:    time.Now,
		cron:   cron.New(cron.WithParser(parser)),
	}
}

// ValidateCronSchedule checks that schedule is a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime calculates when a schedule next fires after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Start schedules the jobs and starts the cron loop. The scheduler stops
// when ctx is cancelled.
func (s *ReminderScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.enqueueReminder(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder job: %w", err)
	}
	s.entryID = entryID

	if s.config.CleanupSchedule != "" {
		if _, err := s.cron.AddFunc(s.config.CleanupSchedule, func() {
			s.enqueueCleanup(ctx)
		}); err != nil {
			return fmt.Errorf("invalid cleanup schedule '%s': %w", s.config.CleanupSchedule, err)
		}
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(s.config.Schedule, s.now())
	s.logger.Info("reminder scheduler started",
		zap.String("schedule", s.config.Schedule),
		zap.Time("next_run", next))

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	s.logger.Info("reminder scheduler stopped")
}

// RunNow enqueues a due check immediately.
func (s *ReminderScheduler) RunNow(ctx context.Context) error {
	return s.queue.Enqueue(ctx, tasks.DueRemindersTask{RequestedAt: s.now()})
}

// IsRunning returns whether the scheduler is active
func (s *ReminderScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next due check will occur
func (s *ReminderScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *ReminderScheduler) enqueueReminder(ctx context.Context) {
	if err := s.RunNow(ctx); err != nil {
		s.logger.Error("failed to enqueue due reminder", zap.Error(err))
	}
}

func (s *ReminderScheduler) enqueueCleanup(ctx context.Context) {
	task := tasks.CleanupAuditEventsTask{RetentionDays: s.config.RetentionDays}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.logger.Error("failed to enqueue audit cleanup", zap.Error(err))
	}
}
