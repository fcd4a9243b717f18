package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "bode-andarilho/agenda/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfirmationRepository struct {
	db *gorm.DB
}

func NewConfirmationRepository(db *gorm.DB) *ConfirmationRepository {
	return &ConfirmationRepository{db: db}
}

// Find returns the confirmation for (eventID, userID).
func (r *ConfirmationRepository) Find(ctx context.Context, eventID string, userID int64) (*gormModels.Confirmation, error) {
	var c gormModels.Confirmation
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch confirmation: %w", err)
	}
	return &c, nil
}

// Insert writes c unless a row for the same (event, user) exists.
// Returns false when nothing was written.
func (r *ConfirmationRepository) Insert(ctx context.Context, c *gormModels.Confirmation) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(c)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert confirmation: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the confirmation for (eventID, userID).
// Returns false when there was none.
func (r *ConfirmationRepository) Delete(ctx context.Context, eventID string, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&gormModels.Confirmation{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete confirmation: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteAllForEvent removes every confirmation of eventID.
func (r *ConfirmationRepository) DeleteAllForEvent(ctx context.Context, eventID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&gormModels.Confirmation{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete event confirmations: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListByEvent returns an event's confirmations in confirmation order.
func (r *ConfirmationRepository) ListByEvent(ctx context.Context, eventID string) ([]gormModels.Confirmation, error) {
	var list []gormModels.Confirmation
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("confirmed_at").
		Order("id").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmations: %w", err)
	}
	return list, nil
}

// ListByUser returns a member's confirmations.
func (r *ConfirmationRepository) ListByUser(ctx context.Context, userID int64) ([]gormModels.Confirmation, error) {
	var list []gormModels.Confirmation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("confirmed_at").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user confirmations: %w", err)
	}
	return list, nil
}
