package bot

import (
	"context"
	"strings"

	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
)

const (
	flowCreateEvent = "create_event"

	// skipValue leaves an optional field empty.
	skipValue = "-"
)

var skipChoice = []choice{{Label: "⏭ Pular", Value: skipValue}}

var mealPolicyChoices = []choice{
	{Label: "🍽 Gratuito", Value: string(constants.MealPolicyFree)},
	{Label: "💰 Pago / dividido", Value: string(constants.MealPolicyPaidShared)},
}

func (b *Bot) createEventFlow() *Flow {
	return &Flow{
		Name: flowCreateEvent,
		Role: constants.RoleSecretary,
		Steps: []*Step{
			textStep("date", "📅 Data da sessão? (DD/MM/AAAA)", b.parseEventDate, "time"),
			textStep("time", "🕗 Horário? (HH:MM)", parseClock, "lodge_name"),
			textStep("lodge_name", "🏛 Nome da Loja anfitriã?", parseName, "lodge_number"),
			textStep("lodge_number", "🔢 Número da Loja?", parseDigits, "origin"),
			textStep("origin", "📍 Oriente (cidade)?", parseName, "min_grade"),
			choiceStep("min_grade", "🔺 Grau mínimo para participar?", b.gradeChoices(), "session_type"),
			choiceStep("session_type", "📜 Tipo de sessão?", choicesOf(b.Catalog.SessionTypes...), "rite"),
			choiceStep("rite", "📖 Rito?", choicesOf(b.Catalog.Rites...), "jurisdiction"),
			textStep("jurisdiction", "⚜️ Potência?", parseRequired, "dress_code"),
			choiceStep("dress_code", "👔 Traje?", choicesOf(b.Catalog.DressCodes...), "meal"),
			{
				Name:   "meal",
				Prompt: staticChoicePrompt("🍽 Haverá ágape?", []choice{{Label: "Sim", Value: "with"}, {Label: "Não", Value: "without"}}),
				Receive: func(_ context.Context, _ *Turn, s *Session, value string) (string, error) {
					switch value {
					case "with":
						delete(s.Fields, "meal_policy")
						return "meal_kind", nil
					case "without":
						s.Fields["meal_policy"] = string(constants.MealPolicyNone)
						return "notes", nil
					}
					return "", invalid(constants.MsgChooseOption)
				},
			},
			{
				Name:   "meal_kind",
				Prompt: staticChoicePrompt("🍽 O ágape é:", mealPolicyChoices),
				Receive: func(_ context.Context, _ *Turn, s *Session, value string) (string, error) {
					if !hasChoice(mealPolicyChoices, value) {
						return "", invalid(constants.MsgChooseOption)
					}
					s.Fields["meal_policy"] = value
					return "notes", nil
				},
			},
			{
				Name:    "notes",
				Text:    true,
				Choices: staticChoices(skipChoice),
				Prompt:  staticChoicePrompt("📝 Observações? Digite o texto ou pule.", skipChoice),
				Receive: func(_ context.Context, _ *Turn, s *Session, value string) (string, error) {
					s.Fields["notes"] = optionalText(value)
					return "address", nil
				},
			},
			textStep("address", "🗺 Endereço completo?", parseRequired, "review"),
			{
				Name:    "review",
				Prompt:  b.promptEventReview,
				Receive: b.receiveEventReview,
			},
		},
	}
}

func staticChoicePrompt(text string, choices []choice) func(context.Context, *Session) (dtos.OutboundMessage, error) {
	return func(context.Context, *Session) (dtos.OutboundMessage, error) {
		return dtos.OutboundMessage{Text: text, Buttons: choiceRows(choices)}, nil
	}
}

func optionalText(v string) string {
	v = strings.TrimSpace(v)
	if v == skipValue {
		return ""
	}
	return v
}

// draftEvent builds the event a finished draft describes.
func (b *Bot) draftEvent(s *Session) (*gormModels.Event, error) {
	draft, err := decodeDraft[eventDraft](s.Fields, "notes", "channel_id")
	if err != nil {
		return nil, err
	}
	policy, ok := constants.ParseMealPolicy(draft.MealPolicy)
	if !ok {
		return nil, corrupt("meal policy %q", draft.MealPolicy)
	}
	day, err := common.ParseDate(draft.Date, b.settings.Location)
	if err != nil {
		return nil, corrupt("stored date %q", draft.Date)
	}
	channel := draft.ChannelID
	if channel == 0 {
		channel = b.settings.DefaultChannelID
	}
	return &gormModels.Event{
		Date:         draft.Date,
		Weekday:      common.WeekdayName(day),
		Key:          gormModels.EventKey(draft.Date, draft.LodgeName),
		Time:         draft.Time,
		LodgeName:    draft.LodgeName,
		LodgeNumber:  draft.LodgeNumber,
		Jurisdiction: draft.Jurisdiction,
		Origin:       draft.Origin,
		MinGrade:     draft.MinGrade,
		SessionType:  draft.SessionType,
		Rite:         draft.Rite,
		DressCode:    draft.DressCode,
		MealPolicy:   policy,
		Notes:        draft.Notes,
		Address:      draft.Address,
		ChannelID:    channel,
	}, nil
}

func (b *Bot) promptEventReview(_ context.Context, s *Session) (dtos.OutboundMessage, error) {
	event, err := b.draftEvent(s)
	if err != nil {
		return dtos.OutboundMessage{}, err
	}
	return dtos.OutboundMessage{
		Text:    "Confira a sessão antes de publicar:\n\n" + eventDetails(event),
		Buttons: choiceRows(reviewChoices),
	}, nil
}

func (b *Bot) receiveEventReview(ctx context.Context, t *Turn, s *Session, value string) (string, error) {
	switch value {
	case "restart":
		restartDraft(s, fieldChannelID)
		return "date", nil
	case "confirm":
	default:
		return "", invalid(constants.MsgChooseOption)
	}

	event, err := b.draftEvent(s)
	if err != nil {
		return "", err
	}
	// the session may have idled past midnight since the date was typed
	if _, err := b.parseEventDate(event.Date); err != nil {
		return "", err
	}
	event.SecretaryID = t.In.UserID

	if err := b.Events.Create(ctx, event); err != nil {
		return "", err
	}

	text := "✅ Sessão cadastrada e publicada!"
	if err := b.publish(ctx, event.ChannelID, announcement(event)); err != nil {
		text = "✅ Sessão cadastrada, mas não consegui publicá-la no canal."
	}
	return stateDone, t.Reply(ctx, dtos.OutboundMessage{
		Text: text + "\n\n" + eventDetails(event),
		Buttons: [][]dtos.Button{
			dtos.Row(button("🛠 Gerenciar sessão", constants.VerbManageEvent, event.Key)),
			dtos.Row(mainMenuButton()),
		},
	})
}

// publish posts to an event channel. A zero channel publishes nowhere.
func (b *Bot) publish(ctx context.Context, channelID int64, msg dtos.OutboundMessage) error {
	if channelID == 0 {
		logging.Warn("No channel to publish to")
		return nil
	}
	if _, err := b.Transport.SendMessage(ctx, channelID, msg); err != nil {
		logging.Error("Failed to publish to channel", "channel_id", channelID, "error", err)
		return err
	}
	return nil
}
