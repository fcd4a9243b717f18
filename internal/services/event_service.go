package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/logging"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
)

// EventService performs event writes and keeps the directory cache fresh.
type EventService struct {
	events    EventStore
	ledger    *AttendanceLedger
	directory *EventDirectory
	loc       *time.Location
}

func NewEventService(events EventStore, ledger *AttendanceLedger, directory *EventDirectory, loc *time.Location) *EventService {
	if loc == nil {
		loc = time.UTC
	}
	return &EventService{
		events:    events,
		ledger:    ledger,
		directory: directory,
		loc:       loc,
	}
}

// Create stores a new active event. The weekday and key are derived from
// the date and lodge name here and never recomputed on read.
func (s *EventService) Create(ctx context.Context, event *gormModels.Event) error {
	day, err := common.ParseDate(event.Date, s.loc)
	if err != nil {
		return fmt.Errorf("event date %q: %w", event.Date, err)
	}
	event.Date = common.FormatDate(day)
	event.EventDate = CalendarDay(day)
	event.Weekday = common.WeekdayName(day)
	event.Key = gormModels.EventKey(event.Date, event.LodgeName)
	event.Status = constants.EventStatusActive
	if event.MealPolicy == "" {
		event.MealPolicy = constants.MealPolicyNone
	}

	if err := s.events.Create(ctx, event); err != nil {
		return storageErr("create event", err)
	}
	s.directory.Invalidate()

	logging.Info("Event created", "event_id", event.ID, "event_key", event.Key, "secretary_id", event.SecretaryID)
	return nil
}

// UpdateField patches one column of an active event and returns the updated
// event. Changing the date or lodge name moves the event key with it.
func (s *EventService) UpdateField(ctx context.Context, event *gormModels.Event, column, value string) (*gormModels.Event, error) {
	updated := *event
	fields := map[string]any{}

	switch column {
	case "date":
		day, err := common.ParseDate(value, s.loc)
		if err != nil {
			return nil, err
		}
		updated.Date = common.FormatDate(day)
		updated.EventDate = CalendarDay(day)
		updated.Weekday = common.WeekdayName(day)
		fields["date"] = updated.Date
		fields["event_date"] = updated.EventDate
		fields["weekday"] = updated.Weekday
	case "lodge_name":
		updated.LodgeName = value
		fields["lodge_name"] = value
	case "meal_policy":
		policy, ok := constants.ParseMealPolicy(value)
		if !ok {
			return nil, fmt.Errorf("unknown meal policy %q", value)
		}
		updated.MealPolicy = policy
		fields["meal_policy"] = policy
	default:
		if err := setEventText(&updated, column, value); err != nil {
			return nil, err
		}
		fields[column] = value
	}

	if updated.Key != gormModels.EventKey(updated.Date, updated.LodgeName) {
		updated.Key = gormModels.EventKey(updated.Date, updated.LodgeName)
		fields["event_key"] = updated.Key
	}

	if err := s.events.UpdateFields(ctx, event.ID, fields); err != nil {
		return nil, storageErr("update event", err)
	}
	s.directory.Invalidate()

	logging.Info("Event updated", "event_id", event.ID, "field", column, "by", actedBy(ctx))
	return &updated, nil
}

func setEventText(e *gormModels.Event, column, value string) error {
	switch column {
	case "time":
		e.Time = value
	case "lodge_number":
		e.LodgeNumber = value
	case "jurisdiction":
		e.Jurisdiction = value
	case "origin":
		e.Origin = value
	case "min_grade":
		e.MinGrade = value
	case "session_type":
		e.SessionType = value
	case "rite":
		e.Rite = value
	case "dress_code":
		e.DressCode = value
	case "notes":
		e.Notes = value
	case "address":
		e.Address = value
	default:
		return fmt.Errorf("event field %q is not editable", strings.TrimSpace(column))
	}
	return nil
}

// Cancel performs the one-way active to cancelled transition and clears the
// event's confirmations.
func (s *EventService) Cancel(ctx context.Context, eventID string) (int64, error) {
	removed, err := s.ledger.CancelEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	s.directory.Invalidate()
	logging.Info("Event cancelled", "event_id", eventID, "confirmations_removed", removed, "by", actedBy(ctx))
	return removed, nil
}
