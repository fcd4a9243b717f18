package gorm

import (
	"bode-andarilho/agenda/internal/constants"
	"time"
)

// Confirmation records one member's intent to attend one event. The member
// fields are a snapshot taken at confirmation time.
type Confirmation struct {
	ID           uint               `gorm:"column:id;primaryKey"`
	EventID      string             `gorm:"column:event_id;type:varchar(36);uniqueIndex:idx_confirmation_event_user"`
	UserID       int64              `gorm:"column:user_id;uniqueIndex:idx_confirmation_event_user;index"`
	EventKey     string             `gorm:"column:event_key"`
	Name         string             `gorm:"column:name"`
	Grade        string             `gorm:"column:grade"`
	Lodge        string             `gorm:"column:lodge"`
	Origin       string             `gorm:"column:origin"`
	Jurisdiction string             `gorm:"column:jurisdiction"`
	MealTier     constants.MealTier `gorm:"column:meal_tier;type:varchar(16)"`
	ConfirmedAt  time.Time          `gorm:"column:confirmed_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Confirmation) TableName() string {
	return "confirmations"
}
