package repositories

import (
	"context"
	"errors"
	"fmt"

	"bode-andarilho/agenda/internal/constants"
	gormModels "bode-andarilho/agenda/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// editable member columns
var memberColumns = map[string]bool{
	"name":         true,
	"birth_date":   true,
	"grade":        true,
	"lodge_name":   true,
	"lodge_number": true,
	"origin":       true,
	"jurisdiction": true,
}

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Get retrieves a member by user id
func (r *MemberRepository) Get(ctx context.Context, userID int64) (*gormModels.Member, error) {
	var member gormModels.Member

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&member).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	return &member, nil
}

// Create inserts the member unless one with the same user id exists.
// Returns false when the row was already there.
func (r *MemberRepository) Create(ctx context.Context, member *gormModels.Member) (bool, error) {
	if member.Role == "" {
		member.Role = constants.RoleMember
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create member: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UpdateField patches a single profile column.
func (r *MemberRepository) UpdateField(ctx context.Context, userID int64, column, value string) error {
	if !memberColumns[column] {
		return fmt.Errorf("%w: %s", ErrFieldNotEditable, column)
	}
	res := r.db.WithContext(ctx).
		Model(&gormModels.Member{}).
		Where("user_id = ?", userID).
		Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update member %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRole changes a member's role.
func (r *MemberRepository) SetRole(ctx context.Context, userID int64, role constants.Role) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Member{}).
		Where("user_id = ?", userID).
		Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("failed to update member role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every member ordered by name.
func (r *MemberRepository) List(ctx context.Context) ([]gormModels.Member, error) {
	var members []gormModels.Member
	if err := r.db.WithContext(ctx).Order("name").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// ListByRole returns members holding role, ordered by name.
func (r *MemberRepository) ListByRole(ctx context.Context, role constants.Role) ([]gormModels.Member, error) {
	var members []gormModels.Member
	q := r.db.WithContext(ctx).Order("name")
	if role == constants.RoleMember {
		// rows written before roles existed may carry an empty role
		q = q.Where("role = ? OR role = '' OR role IS NULL", role)
	} else {
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to list members by role: %w", err)
	}
	return members, nil
}
