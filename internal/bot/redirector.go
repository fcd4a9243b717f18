package bot

import (
	"context"

	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/models/dtos"
)

// Redirector hands an interaction started in a shared chat over to the
// user's private chat.
type Redirector struct {
	transport Transport
	locks     *common.KeyedMutex[SessionKey]
}

func NewRedirector(transport Transport, locks *common.KeyedMutex[SessionKey]) *Redirector {
	return &Redirector{transport: transport, locks: locks}
}

// Redirect acknowledges in the shared chat without revealing anything and
// retargets t at the private chat. The private session key stays locked
// until the interaction ends; the shared key is already held by the caller.
func (r *Redirector) Redirect(ctx context.Context, t *Turn) {
	if t.Private() {
		return
	}

	if t.In.IsCallback() {
		t.Ack(ctx, constants.MsgCheckPrivate)
	} else if _, err := r.transport.SendMessage(ctx, t.In.ChatID, dtos.OutboundMessage{Text: constants.MsgCheckPrivate}); err != nil {
		logging.Warn("Failed to post redirect notice", "chat_id", t.In.ChatID, "error", err)
	}

	t.hold(r.locks.Lock(SessionKey{ChatID: t.In.UserID, UserID: t.In.UserID}))
	t.retarget()

	logging.Debug("Redirected to private chat", "user_id", t.In.UserID, "from_chat", t.In.ChatID)
}
