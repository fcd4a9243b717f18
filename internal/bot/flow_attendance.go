package bot

import (
	"context"
	"errors"
	"fmt"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
	"bode-andarilho/agenda/internal/services"
)

const flowAttendance = "attendance"

// attendanceFlow asks for the meal tier when a confirmation arrives
// without one.
func (b *Bot) attendanceFlow() *Flow {
	return &Flow{
		Name:  flowAttendance,
		Role:  constants.RoleMember,
		Begin: b.beginAttendance,
		Steps: []*Step{
			{
				Name:    "meal",
				Prompt:  b.promptMealTier,
				Receive: b.receiveMealTier,
			},
		},
	}
}

func (b *Bot) sessionEvent(ctx context.Context, s *Session) (*gormModels.Event, error) {
	id, ok := s.Field(fieldEventID)
	if !ok || id == "" {
		return nil, corrupt("%s has no event", s.Flow)
	}
	return b.Directory.Get(ctx, id)
}

func (b *Bot) beginAttendance(ctx context.Context, t *Turn, s *Session) (string, error) {
	event, err := b.sessionEvent(ctx, s)
	if err != nil {
		return "", err
	}
	if !event.IsActive() {
		return "", services.ErrEventNotActive
	}
	if !event.MealPolicy.ServesMeal() {
		return stateDone, b.confirmAttendance(ctx, t, event, constants.MealTierNone)
	}
	return "meal", nil
}

func mealChoices(e *gormModels.Event) []choice {
	return []choice{
		{Label: "🍽 Com ágape", Value: string(e.MealPolicy)},
		{Label: "Sem ágape", Value: string(constants.MealTierNone)},
	}
}

func (b *Bot) promptMealTier(ctx context.Context, s *Session) (dtos.OutboundMessage, error) {
	event, err := b.sessionEvent(ctx, s)
	if err != nil {
		return dtos.OutboundMessage{}, err
	}
	return dtos.OutboundMessage{
		Text:    fmt.Sprintf("🍽 Vai participar do ágape?\n\n%s\nÁgape: %s", event.Key, event.MealPolicy.Label()),
		Buttons: choiceRows(mealChoices(event)),
	}, nil
}

func (b *Bot) receiveMealTier(ctx context.Context, t *Turn, s *Session, value string) (string, error) {
	event, err := b.sessionEvent(ctx, s)
	if err != nil {
		return "", err
	}
	if !hasChoice(mealChoices(event), value) {
		return "", invalid(constants.MsgChooseOption)
	}
	if err := b.confirmAttendance(ctx, t, event, constants.MealTier(value)); err != nil {
		return "", err
	}
	return stateDone, nil
}

// confirmAttendance records the confirmation and tells the user. Pressed in
// a shared chat, only a short notice appears there and the details go to
// the private chat.
func (b *Bot) confirmAttendance(ctx context.Context, t *Turn, event *gormModels.Event, tier constants.MealTier) error {
	outcome, err := b.Ledger.Confirm(ctx, event.ID, t.In.UserID, tier)
	if errors.Is(err, services.ErrMealTierNotAllowed) {
		return invalid(constants.MsgInvalidMealTier)
	}
	if err != nil {
		return err
	}

	var msg dtos.OutboundMessage
	switch outcome {
	case services.Confirmed:
		name := t.In.UserName
		if c, err := b.Ledger.Lookup(ctx, event.ID, t.In.UserID); err == nil {
			name = c.Name
		}
		msg = dtos.OutboundMessage{
			Text: fmt.Sprintf(constants.MsgConfirmed, name, event.Key, tier.Label()),
			Buttons: [][]dtos.Button{
				dtos.Row(button("❌ Cancelar presença", constants.VerbCancelAttendance, event.Key)),
				dtos.Row(mainMenuButton()),
			},
		}
	case services.AlreadyConfirmed:
		msg = dtos.OutboundMessage{
			Text: constants.MsgAlreadyConfirmed,
			Buttons: [][]dtos.Button{
				dtos.Row(button("🔎 Ver minha confirmação", constants.VerbShowMyConfirmation, event.Key)),
			},
		}
	default:
		return services.ErrEventNotActive
	}

	if t.Private() {
		return t.Reply(ctx, msg)
	}

	notice := "✅ Presença confirmada!"
	if outcome == services.AlreadyConfirmed {
		notice = constants.MsgAlreadyConfirmed
	}
	t.Ack(ctx, notice)
	if _, err := b.Transport.SendMessage(ctx, t.In.UserID, msg); err != nil {
		// the user may never have opened the private chat
		logging.Warn("Failed to send private confirmation", "user_id", t.In.UserID, "error", err)
	}
	return nil
}
