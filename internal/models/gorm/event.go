package gorm

import (
	"bode-andarilho/agenda/internal/constants"
	"time"
)

// Event is a published session. ID is the internal surrogate key; Key is the
// "<date> — <lodge name>" identity carried in buttons and shown to users.
type Event struct {
	ID           string                `gorm:"column:id;primaryKey;type:varchar(36)"`
	Key          string                `gorm:"column:event_key;index"`
	Date         string                `gorm:"column:date"`
	EventDate    time.Time             `gorm:"column:event_date;index"`
	Weekday      string                `gorm:"column:weekday"`
	Time         string                `gorm:"column:time"`
	LodgeName    string                `gorm:"column:lodge_name"`
	LodgeNumber  string                `gorm:"column:lodge_number"`
	Jurisdiction string                `gorm:"column:jurisdiction"`
	Origin       string                `gorm:"column:origin"`
	MinGrade     string                `gorm:"column:min_grade"`
	SessionType  string                `gorm:"column:session_type"`
	Rite         string                `gorm:"column:rite"`
	DressCode    string                `gorm:"column:dress_code"`
	MealPolicy   constants.MealPolicy  `gorm:"column:meal_policy;type:varchar(16)"`
	Notes        string                `gorm:"column:notes"`
	Address      string                `gorm:"column:address"`
	ChannelID    int64                 `gorm:"column:channel_id"`
	SecretaryID  int64                 `gorm:"column:secretary_id;index"`
	Status       constants.EventStatus `gorm:"column:status;type:varchar(16);index"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

// EventKey builds the external identity of an event.
func EventKey(date, lodgeName string) string {
	return date + " — " + lodgeName
}

func (e *Event) IsActive() bool {
	return e.Status == constants.EventStatusActive
}

// Lodge renders "<name> Nº <number>".
func (e *Event) Lodge() string {
	if e.LodgeNumber == "" {
		return e.LodgeName
	}
	return e.LodgeName + " Nº " + e.LodgeNumber
}
