package bot

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
)

// handleCreateEvent starts event creation. Started from a shared chat, the
// event is published back to that chat; otherwise to the default channel.
func (b *Bot) handleCreateEvent(ctx context.Context, t *Turn) error {
	channel := b.settings.DefaultChannelID
	if !t.In.IsPrivate() {
		channel = t.In.ChatID
	}
	return b.startFlow(ctx, t, flowCreateEvent, map[string]string{
		fieldChannelID: strconv.FormatInt(channel, 10),
	})
}

func (b *Bot) handleMyEvents(ctx context.Context, t *Turn) error {
	events, err := b.Directory.OwnedBy(ctx, t.In.UserID, t.Actor.IsAdmin())
	if err != nil {
		return err
	}
	back := button("⬅️ Voltar", constants.VerbSecretaryArea)
	if len(events) == 0 {
		return t.Reply(ctx, dtos.OutboundMessage{Text: "Você não tem sessões ativas.", Buttons: [][]dtos.Button{dtos.Row(back)}})
	}
	return t.Reply(ctx, eventList("🗂 Suas sessões", events, constants.VerbManageEvent, back))
}

// managedEvent resolves an event the actor may change.
func (b *Bot) managedEvent(ctx context.Context, t *Turn) (*gormModels.Event, error) {
	event, err := b.activeEvent(ctx, t.Cmd.Arg(0))
	if err != nil {
		return nil, err
	}
	if !canManage(t, event) {
		logging.Info("Event management denied", "user_id", t.In.UserID, "event_id", event.ID)
		return nil, ErrPermissionDenied
	}
	return event, nil
}

func (b *Bot) handleManageEvent(ctx context.Context, t *Turn) error {
	event, err := b.managedEvent(ctx, t)
	if err != nil {
		return err
	}
	count, err := b.Directory.Headcount(ctx, event.ID)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("%s\n\n👥 Confirmados: %d", eventDetails(event), count.Total)
	if event.MealPolicy.ServesMeal() {
		text += fmt.Sprintf(" (com ágape: %d)", count.WithMeal)
	}
	return t.Reply(ctx, dtos.OutboundMessage{
		Text: text,
		Buttons: [][]dtos.Button{
			dtos.Row(button("✏️ Editar", constants.VerbEditEvent, event.Key), button("🚫 Cancelar sessão", constants.VerbCancelEvent, event.Key)),
			dtos.Row(button("👥 Confirmados", constants.VerbListAttendees, event.Key), button("📤 Exportar", constants.VerbExportAttendees, event.Key)),
			dtos.Row(button("⬅️ Voltar", constants.VerbMyEvents)),
		},
	})
}

func (b *Bot) handleEditEvent(ctx context.Context, t *Turn) error {
	event, err := b.managedEvent(ctx, t)
	if err != nil {
		return err
	}
	return b.startFlow(ctx, t, flowEditEvent, map[string]string{fieldEventID: event.ID})
}

func (b *Bot) handleCancelEvent(ctx context.Context, t *Turn) error {
	event, err := b.managedEvent(ctx, t)
	if err != nil {
		return err
	}
	return t.Reply(ctx, dtos.OutboundMessage{
		Text: fmt.Sprintf("⚠️ Cancelar a sessão\n%s?\n\nTodas as confirmações serão removidas e o canal será avisado.", event.Key),
		Buttons: [][]dtos.Button{dtos.Row(
			button("✅ Sim, cancelar", constants.VerbConfirmCancelEvt, event.Key),
			button("❌ Não", constants.VerbManageEvent, event.Key),
		)},
	})
}

// handleConfirmCancelEvent cancels the event. Only the press that performs
// the transition announces it, so the channel hears about it once.
func (b *Bot) handleConfirmCancelEvent(ctx context.Context, t *Turn) error {
	event, err := b.managedEvent(ctx, t)
	if err != nil {
		return err
	}
	removed, err := b.Events.Cancel(ctx, event.ID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("🚫 Sessão cancelada. %d confirmação(ões) removida(s).", removed)
	if err := b.publish(ctx, event.ChannelID, cancelNotice(event)); err != nil {
		text += "\nNão consegui avisar o canal."
	}
	return t.Reply(ctx, dtos.OutboundMessage{
		Text:    text,
		Buttons: [][]dtos.Button{dtos.Row(button("⬅️ Minhas sessões", constants.VerbMyEvents))},
	})
}

// handleExportAttendees hands out a short-lived signed link to the
// attendee list.
func (b *Bot) handleExportAttendees(ctx context.Context, t *Turn) error {
	event, err := b.managedEvent(ctx, t)
	if err != nil {
		return err
	}
	if b.Signer == nil || b.settings.PublicBaseURL == "" {
		return t.Say(ctx, "Exportação indisponível no momento.")
	}
	token, err := b.Signer.Sign(event.ID, t.In.UserID, b.settings.ExportLinkTTL)
	if err != nil {
		return err
	}
	link := strings.TrimRight(b.settings.PublicBaseURL, "/") + "/api/v1/export/attendees?token=" + url.QueryEscape(token)
	return t.Reply(ctx, dtos.OutboundMessage{
		Text: fmt.Sprintf("📤 Lista de confirmados de\n%s\n\n%s\n\nO link vale por %s e pode ser usado uma vez.",
			event.Key, link, b.settings.ExportLinkTTL),
		Buttons: [][]dtos.Button{dtos.Row(button("⬅️ Voltar", constants.VerbManageEvent, event.Key))},
	})
}
