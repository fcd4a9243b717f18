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

const flowRegistration = "registration"

func (b *Bot) registrationFlow() *Flow {
	return &Flow{
		Name:  flowRegistration,
		Role:  constants.RoleMember,
		Begin: b.beginRegistration,
		Steps: []*Step{
			textStep("name", "Qual é o seu nome completo?", parseName, "birth_date"),
			textStep("birth_date", "🎂 Sua data de nascimento? (DD/MM/AAAA)", b.parseBirthDate, "grade"),
			choiceStep("grade", "🔺 Qual é o seu grau?", b.gradeChoices(), "lodge_name"),
			textStep("lodge_name", "🏛 Nome da sua Loja?", parseName, "lodge_number"),
			textStep("lodge_number", "🔢 Número da sua Loja?", parseDigits, "origin"),
			textStep("origin", "📍 Oriente (cidade) da sua Loja?", parseName, "jurisdiction"),
			textStep("jurisdiction", "⚜️ Potência? (ex: GOB, GLESP, COMAB)", parseRequired, "summary"),
			{
				Name:    "summary",
				Prompt:  registrationSummary,
				Receive: b.receiveRegistrationSummary,
			},
		},
	}
}

// beginRegistration skips the questions for someone already registered and
// goes straight to the summary of what is on file.
func (b *Bot) beginRegistration(ctx context.Context, t *Turn, s *Session) (string, error) {
	member, err := b.Members.Get(ctx, t.In.UserID)
	switch {
	case err == nil:
		if err := t.Reply(ctx, mainMenu(fmt.Sprintf(constants.MsgWelcomeBack, member.Name)+"\n\n"+memberProfile(member), t.Actor)); err != nil {
			return "", err
		}
		return stateDone, b.applyPending(ctx, t, s)
	case errors.Is(err, services.ErrNotFound):
		return "name", t.Send(ctx, dtos.OutboundMessage{Text: constants.MsgWelcome})
	default:
		return "", err
	}
}

func registrationSummary(_ context.Context, s *Session) (dtos.OutboundMessage, error) {
	draft, err := decodeDraft[memberDraft](s.Fields)
	if err != nil {
		return dtos.OutboundMessage{}, err
	}
	return dtos.OutboundMessage{
		Text:    "Confira seus dados:\n\n" + memberSummary(draft),
		Buttons: choiceRows(reviewChoices),
	}, nil
}

func (b *Bot) receiveRegistrationSummary(ctx context.Context, t *Turn, s *Session, value string) (string, error) {
	switch value {
	case "restart":
		restartDraft(s, fieldPendingEvent, fieldPendingTier)
		return "name", nil
	case "confirm":
	default:
		return "", invalid(constants.MsgChooseOption)
	}

	draft, err := decodeDraft[memberDraft](s.Fields)
	if err != nil {
		return "", err
	}
	member := &gormModels.Member{
		UserID:       t.In.UserID,
		Name:         draft.Name,
		BirthDate:    draft.BirthDate,
		Grade:        draft.Grade,
		LodgeName:    draft.LodgeName,
		LodgeNumber:  draft.LodgeNumber,
		Origin:       draft.Origin,
		Jurisdiction: draft.Jurisdiction,
	}
	created, err := b.Members.Register(ctx, member)
	if err != nil {
		return "", err
	}

	text := fmt.Sprintf("✅ Cadastro concluído, irmão %s!", member.Name)
	if !created {
		text = "Você já estava cadastrado, irmão. Nada foi alterado."
	}
	if err := t.Reply(ctx, mainMenu(text, t.Actor)); err != nil {
		return stateDone, err
	}
	return stateDone, b.applyPending(ctx, t, s)
}

// restartDraft clears collected answers but keeps the listed fields.
func restartDraft(s *Session, keep ...string) {
	kept := map[string]string{}
	for _, k := range keep {
		if v, ok := s.Fields[k]; ok {
			kept[k] = v
		}
	}
	s.Fields = kept
}

// applyPending completes the confirmation that sent an unregistered user to
// registration. Failures are reported to the user; the registration itself
// stands.
func (b *Bot) applyPending(ctx context.Context, t *Turn, s *Session) error {
	key, ok := s.Field(fieldPendingEvent)
	if !ok || key == "" {
		return nil
	}
	tier, _ := s.Field(fieldPendingTier)

	logging.Info("Applying pending confirmation", "user_id", t.In.UserID, "event_key", key, "meal_tier", tier)

	event, err := b.Directory.Resolve(ctx, key)
	if err == nil && !event.IsActive() {
		err = services.ErrEventNotActive
	}
	if err == nil {
		if tier == "" && event.MealPolicy.ServesMeal() {
			return t.Send(ctx, dtos.OutboundMessage{
				Text:    "Escolha como deseja confirmar:\n\n" + eventDetails(event),
				Buttons: [][]dtos.Button{attendanceButtons(event)},
			})
		}
		if tier == "" {
			tier = string(constants.MealTierNone)
		}
		err = b.confirmAttendance(ctx, t, event, constants.MealTier(tier))
	}
	if err != nil {
		b.outcome(ctx, t, err)
	}
	return nil
}
