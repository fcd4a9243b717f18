package api

import (
	"context"

	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
)

// InteractionHandler consumes normalized chat interactions.
type InteractionHandler interface {
	HandleInteraction(ctx context.Context, in dtos.Interaction)
}

// Acknowledger answers a button press without going through the bot.
type Acknowledger interface {
	AcknowledgeInteraction(ctx context.Context, interactionID, notice string) error
}

// InteractionLimiter decides whether a user may be served right now.
type InteractionLimiter interface {
	Allow(userID int64) bool
}

type TokenRedeemer interface {
	Redeem(token string) (*common.ExportGrant, error)
}

type EventReader interface {
	Get(ctx context.Context, id string) (*gormModels.Event, error)
	Headcount(ctx context.Context, eventID string) (dtos.Headcount, error)
}

type AttendeeLister interface {
	Attendees(ctx context.Context, eventID string) ([]gormModels.Confirmation, error)
}

// Pinger is implemented by backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Bot           InteractionHandler
	Acks          Acknowledger
	Limiter       InteractionLimiter
	WebhookSecret string

	Signer    TokenRedeemer
	Events    EventReader
	Attendees AttendeeLister

	DB    Pinger
	Cache any
}

// PingFunc adapts a function such as (*sqlx.DB).PingContext to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}
