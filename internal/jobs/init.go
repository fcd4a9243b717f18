package jobs

import (
	"context"
)

// InitializeJobs starts every background job and returns them for manual
// triggering.
func InitializeJobs(ctx context.Context, reminders *ReminderJob, reminderCron string) *ReminderJob {
	go reminders.RunScheduled(ctx, reminderCron)
	return reminders
}
