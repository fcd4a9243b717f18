package bot

import (
	"context"
	"errors"
	"fmt"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
	"bode-andarilho/agenda/internal/services"
)

func (b *Bot) handleListEvents(ctx context.Context, t *Turn) error {
	events, err := b.Directory.Upcoming(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return t.Reply(ctx, dtos.OutboundMessage{Text: constants.MsgNoEvents, Buttons: [][]dtos.Button{dtos.Row(mainMenuButton())}})
	}
	msg := eventList("📅 Próximas sessões", events, constants.VerbShowEvent, mainMenuButton())
	filters := dtos.Row(
		button("🗓 Por data", constants.VerbEventsByDate),
		button("🔺 Por grau", constants.VerbEventsByGrade),
	)
	msg.Buttons = append([][]dtos.Button{filters}, msg.Buttons...)
	return t.Reply(ctx, msg)
}

func (b *Bot) handleEventDates(ctx context.Context, t *Turn) error {
	groups, err := b.Directory.Dates(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return t.Reply(ctx, dtos.OutboundMessage{Text: constants.MsgNoEvents, Buttons: [][]dtos.Button{dtos.Row(mainMenuButton())}})
	}
	msg := dtos.OutboundMessage{Text: "🗓 Escolha a data:"}
	for _, g := range groups {
		label := fmt.Sprintf("%s (%s) · %d", g.Date, g.Weekday, g.Count)
		msg.Buttons = append(msg.Buttons, dtos.Row(button(label, constants.VerbEventsByDate, g.Date)))
	}
	msg.Buttons = append(msg.Buttons, dtos.Row(button("⬅️ Voltar", constants.VerbListEvents)))
	return t.Reply(ctx, msg)
}

func (b *Bot) handleEventsOnDate(ctx context.Context, t *Turn) error {
	date := t.Cmd.Arg(0)
	events, err := b.Directory.OnDate(ctx, date)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return t.Reply(ctx, dtos.OutboundMessage{Text: constants.MsgNoEvents, Buttons: [][]dtos.Button{dtos.Row(button("⬅️ Voltar", constants.VerbEventsByDate))}})
	}
	return t.Reply(ctx, eventList("📅 Sessões em "+date, events, constants.VerbShowEvent, button("⬅️ Voltar", constants.VerbEventsByDate)))
}

func (b *Bot) handleEventGrades(ctx context.Context, t *Turn) error {
	msg := dtos.OutboundMessage{Text: "🔺 Mostrar sessões abertas a qual grau?"}
	for _, g := range b.Catalog.GradeNames() {
		msg.Buttons = append(msg.Buttons, dtos.Row(button(g, constants.VerbEventsByGrade, g)))
	}
	msg.Buttons = append(msg.Buttons, dtos.Row(button("⬅️ Voltar", constants.VerbListEvents)))
	return t.Reply(ctx, msg)
}

func (b *Bot) handleEventsForGrade(ctx context.Context, t *Turn) error {
	grade := t.Cmd.Arg(0)
	events, err := b.Directory.ForGrade(ctx, grade)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return t.Reply(ctx, dtos.OutboundMessage{Text: constants.MsgNoEvents, Buttons: [][]dtos.Button{dtos.Row(button("⬅️ Voltar", constants.VerbEventsByGrade))}})
	}
	return t.Reply(ctx, eventList("🔺 Sessões abertas a "+grade, events, constants.VerbShowEvent, button("⬅️ Voltar", constants.VerbEventsByGrade)))
}

// activeEvent resolves a key and refuses cancelled events.
func (b *Bot) activeEvent(ctx context.Context, key string) (*gormModels.Event, error) {
	event, err := b.Directory.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	if !event.IsActive() {
		return nil, services.ErrEventNotActive
	}
	return event, nil
}

func (b *Bot) handleShowEvent(ctx context.Context, t *Turn) error {
	event, err := b.activeEvent(ctx, t.Cmd.Arg(0))
	if err != nil {
		return err
	}

	var rows [][]dtos.Button
	_, err = b.Ledger.Lookup(ctx, event.ID, t.In.UserID)
	switch {
	case err == nil:
		rows = append(rows, dtos.Row(button("❌ Cancelar presença", constants.VerbCancelAttendance, event.Key)))
	case errors.Is(err, services.ErrNotFound):
		rows = append(rows, attendanceButtons(event))
	default:
		return err
	}
	rows = append(rows,
		dtos.Row(button("👥 Ver confirmados", constants.VerbListAttendees, event.Key)),
		dtos.Row(button("⬅️ Voltar", constants.VerbListEvents)),
	)
	return t.Reply(ctx, dtos.OutboundMessage{Text: eventDetails(event), Buttons: rows})
}

func (b *Bot) handleListAttendees(ctx context.Context, t *Turn) error {
	event, err := b.Directory.Resolve(ctx, t.Cmd.Arg(0))
	if err != nil {
		return err
	}
	list, err := b.Ledger.Attendees(ctx, event.ID)
	if err != nil {
		return err
	}
	count, err := b.Directory.Headcount(ctx, event.ID)
	if err != nil {
		return err
	}
	return t.Reply(ctx, dtos.OutboundMessage{
		Text: attendeeList(event, list, count),
		Buttons: [][]dtos.Button{
			dtos.Row(button("⬅️ Voltar", constants.VerbShowEvent, event.Key)),
		},
	})
}
