package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/scheduler"
	"github.com/mrlokans/librarian/internal/tasks"
)

const shutdownTimeout = 10 * time.Second

func (r *runner) remindCommand() *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Check for books due soon on a schedule until interrupted",
		Long: `Runs the due-reminder scheduler. Every REMINDER_SCHEDULE tick a check is
queued; the worker logs every loan inside the due window and records the
check in the audit trail. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runReminders(cmd.Context(), now)
		},
	}
	cmd.Flags().BoolVar(&now, "now", false, "Queue a due check immediately on start")
	return cmd
}

func (r *runner) runReminders(ctx context.Context, now bool) error {
	app, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	client, err := tasks.NewClient(r.cfg.Database.Path, tasks.DefaultConfig().Merge(tasks.Config{
		Workers:           r.cfg.Tasks.Workers,
		MaxRetries:        r.cfg.Tasks.MaxRetries,
		RetryDelay:        r.cfg.Tasks.RetryDelay,
		TaskTimeout:       r.cfg.Tasks.TaskTimeout,
		ReleaseAfter:      r.cfg.Tasks.ReleaseAfter,
		CleanupInterval:   r.cfg.Tasks.CleanupInterval,
		RetentionDuration: r.cfg.Tasks.RetentionDuration,
	}), r.log())
	if err != nil {
		return err
	}
	defer client.Close()

	logger := r.log().Named("reminders")
	schedCfg := scheduler.Config{Schedule: r.cfg.Reminders.Schedule}
	if app.Audit != nil {
		client.Register(
			tasks.NewDueRemindersQueue(app.Catalog, app.Audit, logger),
			tasks.NewCleanupAuditEventsQueue(app.Audit, logger),
		)
		schedCfg.CleanupSchedule = "0 3 * * *"
		schedCfg.RetentionDays = r.cfg.Audit.RetentionDays
	} else {
		client.Register(tasks.NewDueRemindersQueue(app.Catalog, nil, logger))
	}

	go client.Start(ctx)

	sched := scheduler.NewReminderScheduler(client, schedCfg, logger)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	if now {
		if err := sched.RunNow(ctx); err != nil {
			return err
		}
	}
	if next := sched.GetNextRunTime(); next != nil {
		fmt.Fprintf(r.opts.Out, "Reminders running, next check at %s. Press Ctrl+C to stop.\n", next.Format("2006-01-02 15:04"))
	}

	<-ctx.Done()
	sched.Stop()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if !client.Stop(stopCtx) {
		logger.Warn("task queue did not stop in time", zap.Duration("timeout", shutdownTimeout))
	}
	return nil
}
