package gorm

import (
	"bode-andarilho/agenda/internal/constants"
	"time"
)

type Member struct {
	UserID       int64          `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	Name         string         `gorm:"column:name"`
	BirthDate    string         `gorm:"column:birth_date"`
	Grade        string         `gorm:"column:grade"`
	LodgeName    string         `gorm:"column:lodge_name"`
	LodgeNumber  string         `gorm:"column:lodge_number"`
	Origin       string         `gorm:"column:origin"`
	Jurisdiction string         `gorm:"column:jurisdiction"`
	Role         constants.Role `gorm:"column:role;type:varchar(16);index"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Member) TableName() string {
	return "members"
}

// Lodge renders "<name> Nº <number>" for summaries and snapshots.
func (m *Member) Lodge() string {
	if m.LodgeNumber == "" {
		return m.LodgeName
	}
	return m.LodgeName + " Nº " + m.LodgeNumber
}
