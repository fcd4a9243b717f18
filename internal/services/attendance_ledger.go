package services

import (
	"context"
	"errors"

	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/metrics"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
)

type ConfirmOutcome int

const (
	Confirmed ConfirmOutcome = iota + 1
	AlreadyConfirmed
	EventUnavailable
)

func (o ConfirmOutcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case AlreadyConfirmed:
		return "already_confirmed"
	case EventUnavailable:
		return "event_unavailable"
	}
	return "unknown"
}

type CancelOutcome int

const (
	Cancelled CancelOutcome = iota + 1
	NothingToCancel
)

func (o CancelOutcome) String() string {
	switch o {
	case Cancelled:
		return "cancelled"
	case NothingToCancel:
		return "nothing_to_cancel"
	}
	return "unknown"
}

type attendeeKey struct {
	EventID string
	UserID  int64
}

// AttendanceLedger owns confirmations. Confirm and Cancel hold an event's
// lock shared plus a lock on their own (event, user) pair; CancelEvent holds
// the event's lock exclusively, so it never interleaves with them.
type AttendanceLedger struct {
	events        EventStore
	confirmations ConfirmationStore
	members       MemberStore
	metrics       *metrics.MetricsRegistry

	eventLocks    *common.KeyedRWMutex[string]
	attendeeLocks *common.KeyedMutex[attendeeKey]
}

func NewAttendanceLedger(
	events EventStore,
	confirmations ConfirmationStore,
	members MemberStore,
	metricsReg *metrics.MetricsRegistry,
) *AttendanceLedger {
	return &AttendanceLedger{
		events:        events,
		confirmations: confirmations,
		members:       members,
		metrics:       metricsReg,
		eventLocks:    common.NewKeyedRWMutex[string](),
		attendeeLocks: common.NewKeyedMutex[attendeeKey](),
	}
}

// Confirm records userID's attendance at eventID with the given meal tier.
// A repeated call returns AlreadyConfirmed and writes nothing.
func (l *AttendanceLedger) Confirm(ctx context.Context, eventID string, userID int64, tier constants.MealTier) (ConfirmOutcome, error) {
	defer l.eventLocks.RLock(eventID)()
	defer l.attendeeLocks.Lock(attendeeKey{eventID, userID})()

	event, err := l.events.GetByID(ctx, eventID)
	if errors.Is(err, ErrNotFound) {
		l.metrics.CountLedger("confirm", EventUnavailable.String())
		return EventUnavailable, nil
	}
	if err != nil {
		return 0, storageErr("load event", err)
	}
	if !event.IsActive() {
		l.metrics.CountLedger("confirm", EventUnavailable.String())
		return EventUnavailable, nil
	}
	if !tier.AllowedBy(event.MealPolicy) {
		return 0, ErrMealTierNotAllowed
	}

	if _, err := l.confirmations.Find(ctx, eventID, userID); err == nil {
		l.metrics.CountLedger("confirm", AlreadyConfirmed.String())
		return AlreadyConfirmed, nil
	} else if !errors.Is(err, ErrNotFound) {
		return 0, storageErr("find confirmation", err)
	}

	member, err := l.members.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return 0, ErrNotRegistered
	}
	if err != nil {
		return 0, storageErr("load member", err)
	}

	created, err := l.confirmations.Insert(ctx, &gormModels.Confirmation{
		EventID:      event.ID,
		UserID:       userID,
		EventKey:     event.Key,
		Name:         member.Name,
		Grade:        member.Grade,
		Lodge:        member.Lodge(),
		Origin:       member.Origin,
		Jurisdiction: member.Jurisdiction,
		MealTier:     tier,
	})
	if err != nil {
		return 0, storageErr("insert confirmation", err)
	}
	if !created {
		l.metrics.CountLedger("confirm", AlreadyConfirmed.String())
		return AlreadyConfirmed, nil
	}

	logging.Info("Attendance confirmed", "event_id", eventID, "user_id", userID, "meal_tier", tier)
	l.metrics.CountLedger("confirm", Confirmed.String())
	return Confirmed, nil
}

// Cancel removes userID's confirmation for eventID if there is one.
func (l *AttendanceLedger) Cancel(ctx context.Context, eventID string, userID int64) (CancelOutcome, error) {
	defer l.eventLocks.RLock(eventID)()
	defer l.attendeeLocks.Lock(attendeeKey{eventID, userID})()

	deleted, err := l.confirmations.Delete(ctx, eventID, userID)
	if err != nil {
		return 0, storageErr("delete confirmation", err)
	}
	if !deleted {
		l.metrics.CountLedger("cancel", NothingToCancel.String())
		return NothingToCancel, nil
	}

	logging.Info("Attendance cancelled", "event_id", eventID, "user_id", userID)
	l.metrics.CountLedger("cancel", Cancelled.String())
	return Cancelled, nil
}

// CancelEvent moves the event to cancelled and removes every confirmation
// of it. It succeeds once; later calls return ErrEventNotActive.
func (l *AttendanceLedger) CancelEvent(ctx context.Context, eventID string) (int64, error) {
	defer l.eventLocks.Lock(eventID)()

	removed, err := l.events.MarkCancelled(ctx, eventID)
	if err != nil {
		return 0, storageErr("cancel event", err)
	}

	logging.Info("Event cancelled", "event_id", eventID, "confirmations_removed", removed)
	l.metrics.CountLedger("cancel_all", "cancelled")
	return removed, nil
}

// Lookup returns userID's confirmation for eventID.
func (l *AttendanceLedger) Lookup(ctx context.Context, eventID string, userID int64) (*gormModels.Confirmation, error) {
	c, err := l.confirmations.Find(ctx, eventID, userID)
	return c, storageErr("find confirmation", err)
}

// Attendees lists an event's confirmations.
func (l *AttendanceLedger) Attendees(ctx context.Context, eventID string) ([]gormModels.Confirmation, error) {
	list, err := l.confirmations.ListByEvent(ctx, eventID)
	return list, storageErr("list attendees", err)
}

// ForMember lists the confirmations userID holds.
func (l *AttendanceLedger) ForMember(ctx context.Context, userID int64) ([]gormModels.Confirmation, error) {
	list, err := l.confirmations.ListByUser(ctx, userID)
	return list, storageErr("list member confirmations", err)
}
