package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bode-andarilho/agenda/internal/constants"
	gormModels "bode-andarilho/agenda/internal/models/gorm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// columns an edit may touch; derived columns (event_key, event_date,
// weekday) are set by the caller alongside the field that drives them
var eventColumns = map[string]bool{
	"date":         true,
	"event_date":   true,
	"weekday":      true,
	"event_key":    true,
	"time":         true,
	"lodge_name":   true,
	"lodge_number": true,
	"jurisdiction": true,
	"origin":       true,
	"min_grade":    true,
	"session_type": true,
	"rite":         true,
	"dress_code":   true,
	"meal_policy":  true,
	"notes":        true,
	"address":      true,
}

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event, assigning its surrogate id.
func (r *EventRepository) Create(ctx context.Context, event *gormModels.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Status == "" {
		event.Status = constants.EventStatusActive
	}
	if event.Key == "" {
		event.Key = gormModels.EventKey(event.Date, event.LodgeName)
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by surrogate id
func (r *EventRepository) GetByID(ctx context.Context, id string) (*gormModels.Event, error) {
	var event gormModels.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	return &event, nil
}

// FindByKey returns every event sharing the external key, active ones first
// and newest first within each status.
func (r *EventRepository) FindByKey(ctx context.Context, key string) ([]gormModels.Event, error) {
	var events []gormModels.Event
	err := r.db.WithContext(ctx).
		Where("event_key = ?", key).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find events by key: %w", err)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].IsActive() && !events[j].IsActive()
	})
	return events, nil
}

// ListActive returns active events on or after from, in calendar order.
func (r *EventRepository) ListActive(ctx context.Context, from time.Time) ([]gormModels.Event, error) {
	var events []gormModels.Event
	err := r.db.WithContext(ctx).
		Where("status = ? AND event_date >= ?", constants.EventStatusActive, from).
		Order("event_date").
		Order("time").
		Order("lodge_name").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active events: %w", err)
	}
	return events, nil
}

// ListActiveOn returns active events on the given dd/mm/yyyy date.
func (r *EventRepository) ListActiveOn(ctx context.Context, date string) ([]gormModels.Event, error) {
	var events []gormModels.Event
	err := r.db.WithContext(ctx).
		Where("status = ? AND date = ?", constants.EventStatusActive, date).
		Order("time").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events on %s: %w", date, err)
	}
	return events, nil
}

// ListBySecretary returns active events created by secretaryID; 0 lists all.
func (r *EventRepository) ListBySecretary(ctx context.Context, secretaryID int64) ([]gormModels.Event, error) {
	var events []gormModels.Event
	q := r.db.WithContext(ctx).
		Where("status = ?", constants.EventStatusActive).
		Order("event_date").
		Order("time")
	if secretaryID != 0 {
		q = q.Where("secretary_id = ?", secretaryID)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events by secretary: %w", err)
	}
	return events, nil
}

// UpdateFields patches the given columns of an active event.
func (r *EventRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	for column := range fields {
		if !eventColumns[column] {
			return fmt.Errorf("%w: %s", ErrFieldNotEditable, column)
		}
	}
	res := r.db.WithContext(ctx).
		Model(&gormModels.Event{}).
		Where("id = ? AND status = ?", id, constants.EventStatusActive).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrEventNotActive
	}
	return nil
}

// MarkCancelled moves an active event to cancelled and deletes its
// confirmations in the same transaction. Returns the number of
// confirmations removed.
func (r *EventRepository) MarkCancelled(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&gormModels.Event{}).
			Where("id = ? AND status = ?", id, constants.EventStatusActive).
			Update("status", constants.EventStatusCancelled)
		if res.Error != nil {
			return fmt.Errorf("failed to cancel event: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrEventNotActive
		}

		del := tx.Where("event_id = ?", id).Delete(&gormModels.Confirmation{})
		if del.Error != nil {
			return fmt.Errorf("failed to delete confirmations: %w", del.Error)
		}
		removed = del.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
