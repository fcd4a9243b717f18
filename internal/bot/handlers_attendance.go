package bot

import (
	"context"
	"errors"
	"fmt"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/models/dtos"
	"bode-andarilho/agenda/internal/services"
)

// handleConfirmAttendance serves confirm_attendance|key[|tier]. Unregistered
// users are sent to the private chat to register first; the confirmation is
// applied when registration completes.
func (b *Bot) handleConfirmAttendance(ctx context.Context, t *Turn) error {
	key, tier := t.Cmd.Arg(0), t.Cmd.Arg(1)
	if key == "" {
		return services.ErrNotFound
	}

	_, err := b.Members.Get(ctx, t.In.UserID)
	if errors.Is(err, services.ErrNotFound) {
		b.redirector.Redirect(ctx, t)
		return b.startFlow(ctx, t, flowRegistration, map[string]string{
			fieldPendingEvent: key,
			fieldPendingTier:  tier,
		})
	}
	if err != nil {
		return err
	}

	event, err := b.activeEvent(ctx, key)
	if err != nil {
		return err
	}
	if tier == "" {
		if !event.MealPolicy.ServesMeal() {
			return b.confirmAttendance(ctx, t, event, constants.MealTierNone)
		}
		b.redirector.Redirect(ctx, t)
		return b.startFlow(ctx, t, flowAttendance, map[string]string{fieldEventID: event.ID})
	}
	return b.confirmAttendance(ctx, t, event, constants.MealTier(tier))
}

// handleCancelAttendance asks before removing a confirmation.
func (b *Bot) handleCancelAttendance(ctx context.Context, t *Turn) error {
	key := t.Cmd.Arg(0)
	event, err := b.Directory.Resolve(ctx, key)
	if err != nil {
		return err
	}
	return t.Reply(ctx, dtos.OutboundMessage{
		Text: fmt.Sprintf("Deseja cancelar sua presença em\n%s?", event.Key),
		Buttons: [][]dtos.Button{dtos.Row(
			button("✅ Sim, cancelar", constants.VerbConfirmCancelAttendance, event.Key),
			button("❌ Não", constants.VerbCloseMessage),
		)},
	})
}

func (b *Bot) handleConfirmCancelAttendance(ctx context.Context, t *Turn) error {
	event, err := b.Directory.Resolve(ctx, t.Cmd.Arg(0))
	if err != nil {
		return err
	}
	outcome, err := b.Ledger.Cancel(ctx, event.ID, t.In.UserID)
	if err != nil {
		return err
	}
	text := constants.MsgNothingToCancel
	if outcome == services.Cancelled {
		text = fmt.Sprintf(constants.MsgAttendanceCancelled, event.Key)
	}
	return t.Reply(ctx, dtos.OutboundMessage{
		Text:    text,
		Buttons: [][]dtos.Button{dtos.Row(mainMenuButton())},
	})
}

func (b *Bot) handleMyConfirmations(ctx context.Context, t *Turn) error {
	list, err := b.Ledger.ForMember(ctx, t.In.UserID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return t.Reply(ctx, dtos.OutboundMessage{
			Text:    constants.MsgNoConfirmations,
			Buttons: [][]dtos.Button{dtos.Row(button("📅 Ver sessões", constants.VerbListEvents)), dtos.Row(mainMenuButton())},
		})
	}
	msg := dtos.OutboundMessage{Text: "✅ Suas confirmações"}
	for _, c := range list {
		msg.Buttons = append(msg.Buttons, dtos.Row(button(c.EventKey, constants.VerbShowMyConfirmation, c.EventKey)))
	}
	msg.Buttons = append(msg.Buttons, dtos.Row(mainMenuButton()))
	return t.Reply(ctx, msg)
}

func (b *Bot) handleShowMyConfirmation(ctx context.Context, t *Turn) error {
	event, err := b.Directory.Resolve(ctx, t.Cmd.Arg(0))
	if err != nil {
		return err
	}
	c, err := b.Ledger.Lookup(ctx, event.ID, t.In.UserID)
	if errors.Is(err, services.ErrNotFound) {
		return t.Reply(ctx, dtos.OutboundMessage{
			Text:    "Você não está confirmado nesta sessão.",
			Buttons: [][]dtos.Button{dtos.Row(button("🔎 Ver sessão", constants.VerbShowEvent, event.Key))},
		})
	}
	if err != nil {
		return err
	}
	return t.Reply(ctx, dtos.OutboundMessage{
		Text: fmt.Sprintf("%s\n\nÁgape: %s\nConfirmado em %s",
			eventDetails(event), c.MealTier.Label(), c.ConfirmedAt.In(b.settings.Location).Format("02/01/2006 15:04")),
		Buttons: [][]dtos.Button{
			dtos.Row(button("❌ Cancelar presença", constants.VerbCancelAttendance, event.Key)),
			dtos.Row(button("⬅️ Voltar", constants.VerbMyConfirmations)),
		},
	})
}
