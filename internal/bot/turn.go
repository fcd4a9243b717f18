package bot

import (
	"context"

	"bode-andarilho/agenda/internal/auth"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/models/dtos"
)

// Turn carries one interaction through routing and handling, and knows where
// replies go. After a redirect it points at the user's private chat.
type Turn struct {
	In    dtos.Interaction
	Cmd   Command
	Actor auth.Actor

	chatID    int64
	private   bool
	editable  *dtos.MessageRef
	transport Transport
	acked     bool
	releases  []func()
}

func newTurn(in dtos.Interaction, cmd Command, transport Transport) *Turn {
	t := &Turn{
		In:        in,
		Cmd:       cmd,
		chatID:    in.ChatID,
		private:   in.IsPrivate(),
		transport: transport,
	}
	if in.IsCallback() && in.Message != nil && in.Message.ChatID == in.ChatID {
		ref := *in.Message
		t.editable = &ref
	}
	return t
}

// ChatID is where replies go.
func (t *Turn) ChatID() int64 { return t.chatID }

// Private reports whether replies go to a one-on-one chat.
func (t *Turn) Private() bool { return t.private }

// Key is the session key of the chat replies go to.
func (t *Turn) Key() SessionKey {
	return SessionKey{ChatID: t.chatID, UserID: t.In.UserID}
}

// Reply edits the message whose button was pressed, or sends a new one.
func (t *Turn) Reply(ctx context.Context, msg dtos.OutboundMessage) error {
	if t.editable != nil {
		err := t.transport.EditMessage(ctx, *t.editable, msg)
		if err == nil {
			return nil
		}
		logging.Warn("Edit failed, sending instead", "chat_id", t.chatID, "error", err)
		t.editable = nil
	}
	_, err := t.transport.SendMessage(ctx, t.chatID, msg)
	return err
}

// Say replies with plain text.
func (t *Turn) Say(ctx context.Context, text string) error {
	return t.Reply(ctx, dtos.OutboundMessage{Text: text})
}

// Send posts a new message without replacing the current one.
func (t *Turn) Send(ctx context.Context, msg dtos.OutboundMessage) error {
	t.editable = nil
	_, err := t.transport.SendMessage(ctx, t.chatID, msg)
	return err
}

// Ack answers the button press once; later calls do nothing.
func (t *Turn) Ack(ctx context.Context, notice string) {
	if t.acked || !t.In.IsCallback() {
		return
	}
	t.acked = true
	if err := t.transport.AcknowledgeInteraction(ctx, t.In.CallbackID, notice); err != nil {
		logging.Warn("Failed to acknowledge interaction", "callback_id", t.In.CallbackID, "error", err)
	}
}

// retarget moves replies to the user's private chat.
func (t *Turn) retarget() {
	t.chatID = t.In.UserID
	t.private = true
	t.editable = nil
}

// hold keeps a lock until the interaction finishes.
func (t *Turn) hold(unlock func()) {
	t.releases = append(t.releases, unlock)
}

func (t *Turn) release() {
	for i := len(t.releases) - 1; i >= 0; i-- {
		t.releases[i]()
	}
	t.releases = nil
}
