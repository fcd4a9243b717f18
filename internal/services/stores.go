package services

import (
	"context"
	"time"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
)

// Narrow views of the repositories, so tests can swap in failing stores.

type MemberStore interface {
	Get(ctx context.Context, userID int64) (*gormModels.Member, error)
	Create(ctx context.Context, member *gormModels.Member) (bool, error)
	UpdateField(ctx context.Context, userID int64, column, value string) error
	SetRole(ctx context.Context, userID int64, role constants.Role) error
	List(ctx context.Context) ([]gormModels.Member, error)
	ListByRole(ctx context.Context, role constants.Role) ([]gormModels.Member, error)
}

type EventStore interface {
	Create(ctx context.Context, event *gormModels.Event) error
	GetByID(ctx context.Context, id string) (*gormModels.Event, error)
	FindByKey(ctx context.Context, key string) ([]gormModels.Event, error)
	ListActive(ctx context.Context, from time.Time) ([]gormModels.Event, error)
	ListActiveOn(ctx context.Context, date string) ([]gormModels.Event, error)
	ListBySecretary(ctx context.Context, secretaryID int64) ([]gormModels.Event, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	MarkCancelled(ctx context.Context, id string) (int64, error)
}

type ConfirmationStore interface {
	Find(ctx context.Context, eventID string, userID int64) (*gormModels.Confirmation, error)
	Insert(ctx context.Context, c *gormModels.Confirmation) (bool, error)
	Delete(ctx context.Context, eventID string, userID int64) (bool, error)
	ListByEvent(ctx context.Context, eventID string) ([]gormModels.Confirmation, error)
	ListByUser(ctx context.Context, userID int64) ([]gormModels.Confirmation, error)
}

type StatsStore interface {
	Headcount(ctx context.Context, eventID string) (dtos.Headcount, error)
	HeadcountsByEvent(ctx context.Context, eventIDs []string) (map[string]dtos.Headcount, error)
}
