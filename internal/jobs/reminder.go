// Package jobs runs the scheduled background work of the platform.
package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"campusevents/internal/domain"
)

// ReminderJob runs the daily event reminder batch on a cron schedule.
type ReminderJob struct {
	reminders domain.ReminderService
	logger    *slog.Logger
	schedule  string
	cron      *cron.Cron
}

// NewReminderJob creates a ReminderJob with the given cron schedule
// (standard five-field cron expression, e.g. "0 9 * * *").
func NewReminderJob(reminders domain.ReminderService, schedule string, logger *slog.Logger) *ReminderJob {
	return &ReminderJob{
		reminders: reminders,
		logger:    logger,
		schedule:  schedule,
	}
}

// Start registers the schedule and starts the cron runner. The returned error
// is non-nil only for an invalid schedule expression.
func (j *ReminderJob) Start() error {
	j.cron = cron.New()
	_, err := j.cron.AddFunc(j.schedule, j.run)
	if err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("reminder job scheduled", "schedule", j.schedule)
	return nil
}

// Stop stops the cron runner and waits for a running batch to finish.
func (j *ReminderJob) Stop() {
	if j.cron != nil {
		ctx := j.cron.Stop()
		<-ctx.Done()
	}
}

func (j *ReminderJob) run() {
	sent, failed, err := j.reminders.SendDueReminders(context.Background())
	if err != nil {
		j.logger.Error("reminder batch failed", "error", err)
		return
	}
	j.logger.Info("reminder batch finished", "sent", sent, "failed", failed)
}
