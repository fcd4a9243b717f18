package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/models/dtos"
	"bode-andarilho/agenda/internal/services"
)

// flowHandler starts a flow in the private chat.
func (b *Bot) flowHandler(name string) HandlerFunc {
	return func(ctx context.Context, t *Turn) error {
		return b.startFlow(ctx, t, name, nil)
	}
}

// handleStart greets, resumes a running flow, or starts registration.
func (b *Bot) handleStart(ctx context.Context, t *Turn) error {
	if !t.Private() {
		return t.Say(ctx, constants.MsgGroupOnly)
	}
	if s, ok := b.sessions.Get(t.Key()); ok {
		return b.resume(ctx, t, s)
	}
	return b.startFlow(ctx, t, flowRegistration, nil)
}

func (b *Bot) handleMainMenu(ctx context.Context, t *Turn) error {
	return t.Reply(ctx, mainMenu(constants.MsgMainMenu, t.Actor))
}

func (b *Bot) handleMyProfile(ctx context.Context, t *Turn) error {
	m, err := b.Members.Get(ctx, t.In.UserID)
	if errors.Is(err, services.ErrNotFound) {
		return services.ErrNotRegistered
	}
	if err != nil {
		return err
	}
	return t.Reply(ctx, dtos.OutboundMessage{
		Text: "👤 Seu cadastro\n\n" + memberProfile(m),
		Buttons: [][]dtos.Button{
			dtos.Row(button("✏️ Editar cadastro", constants.VerbEditProfile)),
			dtos.Row(mainMenuButton()),
		},
	})
}

// handleCloseMessage removes the message whose button was pressed.
func (b *Bot) handleCloseMessage(ctx context.Context, t *Turn) error {
	if t.In.Message == nil {
		return nil
	}
	return b.Transport.DeleteMessage(ctx, *t.In.Message)
}

// handleStale answers a flow button pressed when its step is gone: the
// current step is asked again, or the user learns the session expired.
func (b *Bot) handleStale(ctx context.Context, t *Turn) error {
	if s, ok := b.sessions.Get(t.Key()); ok {
		return b.resume(ctx, t, s)
	}
	t.Ack(ctx, constants.MsgSessionExpired)
	return t.Say(ctx, constants.MsgSessionExpired)
}

func (b *Bot) handleSecretaryArea(ctx context.Context, t *Turn) error {
	return t.Reply(ctx, secretaryMenu())
}

func (b *Bot) handleAdminArea(ctx context.Context, t *Turn) error {
	return t.Reply(ctx, adminMenu())
}

func (b *Bot) handleListMembers(ctx context.Context, t *Turn) error {
	members, err := b.Members.List(ctx)
	if err != nil {
		return err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 Membros cadastrados (%d)\n\n", len(members))
	for i, m := range members {
		fmt.Fprintf(&sb, "%d. %s (%s), %s · %s\n", i+1, m.Name, orDash(m.Grade), m.Lodge(), m.Role.Label())
	}
	return t.Reply(ctx, dtos.OutboundMessage{
		Text:    strings.TrimRight(sb.String(), "\n"),
		Buttons: [][]dtos.Button{dtos.Row(button("⚙️ Área do administrador", constants.VerbAdminArea))},
	})
}
