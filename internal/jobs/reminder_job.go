package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"golang.org/x/sync/errgroup"

	"bode-andarilho/agenda/internal/bot"
	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/metrics"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
)

const (
	reminderJobName     = "event_reminders"
	reminderConcurrency = 4
	// a marker outlives the day it guards
	reminderMarkerTTL = 48 * time.Hour
)

type EventLister interface {
	ActiveOn(ctx context.Context, date string) ([]gormModels.Event, error)
}

type AttendeeLister interface {
	Attendees(ctx context.Context, eventID string) ([]gormModels.Confirmation, error)
}

type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, msg dtos.OutboundMessage) (dtos.MessageRef, error)
}

// ReminderJob messages every confirmed member the day before an event.
type ReminderJob struct {
	events    EventLister
	attendees AttendeeLister
	sender    MessageSender
	cache     common.CacheInterface
	metrics   *metrics.MetricsRegistry
	loc       *time.Location
	now       func() time.Time
}

func NewReminderJob(
	events EventLister,
	attendees AttendeeLister,
	sender MessageSender,
	cache common.CacheInterface,
	metricsReg *metrics.MetricsRegistry,
	loc *time.Location,
) *ReminderJob {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderJob{
		events:    events,
		attendees: attendees,
		sender:    sender,
		cache:     cache,
		metrics:   metricsReg,
		loc:       loc,
		now:       time.Now,
	}
}

// ReminderResult counts one run's deliveries.
type ReminderResult struct {
	Events  int
	Sent    int
	Skipped int
	Failed  int
}

// Run sends reminders for events happening tomorrow. A member is reminded
// at most once per event even when runs overlap or repeat.
func (j *ReminderJob) Run(ctx context.Context) (ReminderResult, error) {
	start := time.Now()
	defer func() { j.metrics.ObserveJob(reminderJobName, time.Since(start)) }()

	tomorrow := common.FormatDate(j.now().In(j.loc).AddDate(0, 0, 1))
	events, err := j.events.ActiveOn(ctx, tomorrow)
	if err != nil {
		return ReminderResult{}, fmt.Errorf("failed to list events on %s: %w", tomorrow, err)
	}

	result := ReminderResult{Events: len(events)}
	if len(events) == 0 {
		logging.Debug("No events tomorrow, no reminders to send", "date", tomorrow)
		return result, nil
	}

	type delivery struct {
		event *gormModels.Event
		conf  gormModels.Confirmation
	}
	var queue []delivery
	for i := range events {
		list, err := j.attendees.Attendees(ctx, events[i].ID)
		if err != nil {
			logging.Error("Failed to list attendees for reminder", "event_id", events[i].ID, "error", err)
			result.Failed++
			continue
		}
		for _, c := range list {
			queue = append(queue, delivery{event: &events[i], conf: c})
		}
	}

	outcomes := make([]string, len(queue))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reminderConcurrency)
	for i, d := range queue {
		g.Go(func() error {
			outcomes[i] = j.remind(gctx, d.event, d.conf)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		switch o {
		case "sent":
			result.Sent++
		case "skipped":
			result.Skipped++
		default:
			result.Failed++
		}
		j.metrics.CountReminder(o)
	}

	logging.Info("Reminder run completed",
		"date", tomorrow,
		"events", result.Events,
		"sent", result.Sent,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", time.Since(start).Truncate(time.Millisecond).String(),
	)
	return result, nil
}

func (j *ReminderJob) remind(ctx context.Context, e *gormModels.Event, c gormModels.Confirmation) string {
	marker := fmt.Sprintf("%s%s_%d", constants.CachePrefixReminderSent, e.ID, c.UserID)
	if !j.cache.SetIfAbsent(marker, reminderMarkerTTL) {
		return "skipped"
	}

	if _, err := j.sender.SendMessage(ctx, c.UserID, bot.ReminderMessage(e, &c)); err != nil {
		// let a later run retry this member
		j.cache.Delete(marker)
		logging.Warn("Failed to send reminder", "event_id", e.ID, "user_id", c.UserID, "error", err)
		return "failed"
	}
	return "sent"
}

// RunScheduled runs the job on every tick of cronExpr, evaluated in the
// job's time zone, until ctx is cancelled.
func (j *ReminderJob) RunScheduled(ctx context.Context, cronExpr string) {
	logging.Info("Reminder job scheduled", "cron", cronExpr, "timezone", j.loc.String())

	for {
		next, err := gronx.NextTickAfter(cronExpr, j.now().In(j.loc), false)
		if err != nil {
			logging.Error("Invalid reminder schedule, job stopped", "cron", cronExpr, "error", err)
			return
		}

		select {
		case <-ctx.Done():
			logging.Info("Reminder job stopping")
			return
		case <-time.After(time.Until(next)):
		}

		if _, err := j.Run(ctx); err != nil {
			logging.Error("Reminder run failed", "error", err)
		}
	}
}
