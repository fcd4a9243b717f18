package bot

import (
	"context"

	"bode-andarilho/agenda/internal/models/dtos"
)

// Transport delivers messages to the chat platform.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, msg dtos.OutboundMessage) (dtos.MessageRef, error)
	EditMessage(ctx context.Context, ref dtos.MessageRef, msg dtos.OutboundMessage) error
	DeleteMessage(ctx context.Context, ref dtos.MessageRef) error
	AcknowledgeInteraction(ctx context.Context, interactionID, notice string) error
}
