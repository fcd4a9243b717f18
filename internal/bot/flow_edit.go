package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
	"bode-andarilho/agenda/internal/services"
)

const (
	flowEditProfile = "edit_profile"
	flowEditMember  = "edit_member"
	flowEditEvent   = "edit_event"
)

type fieldSpec struct {
	Column string
	Label  string
}

var profileFields = []fieldSpec{
	{"name", "Nome"},
	{"birth_date", "Nascimento"},
	{"grade", "Grau"},
	{"lodge_name", "Loja"},
	{"lodge_number", "Número da Loja"},
	{"origin", "Oriente"},
	{"jurisdiction", "Potência"},
}

var eventFields = []fieldSpec{
	{"date", "Data"},
	{"time", "Horário"},
	{"lodge_name", "Loja"},
	{"lodge_number", "Número da Loja"},
	{"origin", "Oriente"},
	{"jurisdiction", "Potência"},
	{"min_grade", "Grau mínimo"},
	{"session_type", "Tipo de sessão"},
	{"rite", "Rito"},
	{"dress_code", "Traje"},
	{"meal_policy", "Ágape"},
	{"notes", "Observações"},
	{"address", "Endereço"},
}

func lookupField(specs []fieldSpec, column string) (fieldSpec, bool) {
	for _, f := range specs {
		if f.Column == column {
			return f, true
		}
	}
	return fieldSpec{}, false
}

func eventFieldLabel(column string) string {
	if f, ok := lookupField(eventFields, column); ok {
		return f.Label
	}
	return column
}

func profileValue(m *gormModels.Member, column string) string {
	switch column {
	case "name":
		return m.Name
	case "birth_date":
		return m.BirthDate
	case "grade":
		return m.Grade
	case "lodge_name":
		return m.LodgeName
	case "lodge_number":
		return m.LodgeNumber
	case "origin":
		return m.Origin
	case "jurisdiction":
		return m.Jurisdiction
	}
	return ""
}

func eventValue(e *gormModels.Event, column string) string {
	switch column {
	case "date":
		return e.Date
	case "time":
		return e.Time
	case "lodge_name":
		return e.LodgeName
	case "lodge_number":
		return e.LodgeNumber
	case "origin":
		return e.Origin
	case "jurisdiction":
		return e.Jurisdiction
	case "min_grade":
		return e.MinGrade
	case "session_type":
		return e.SessionType
	case "rite":
		return e.Rite
	case "dress_code":
		return e.DressCode
	case "meal_policy":
		return e.MealPolicy.Label()
	case "notes":
		return e.Notes
	case "address":
		return e.Address
	}
	return ""
}

/* ---------- profile ---------- */

func (b *Bot) editProfileFlow() *Flow {
	return &Flow{
		Name: flowEditProfile,
		Role: constants.RoleMember,
		Begin: func(ctx context.Context, t *Turn, s *Session) (string, error) {
			if _, err := b.Members.Get(ctx, t.In.UserID); err != nil {
				if errors.Is(err, services.ErrNotFound) {
					return "", services.ErrNotRegistered
				}
				return "", err
			}
			s.Fields[fieldTarget] = strconv.FormatInt(t.In.UserID, 10)
			return "field", nil
		},
		Steps: b.profileEditSteps(constants.VerbEditProfile),
	}
}

// editMemberFlow is the administrator's variant: pick a member, then edit
// like a profile.
func (b *Bot) editMemberFlow() *Flow {
	return &Flow{
		Name: flowEditMember,
		Role: constants.RoleAdmin,
		Steps: append([]*Step{
			{
				Name:   "member",
				Prompt: b.memberPicker("✏️ Qual membro deseja editar?", ""),
				Receive: func(ctx context.Context, _ *Turn, s *Session, value string) (string, error) {
					if _, err := b.pickMember(ctx, value, ""); err != nil {
						return "", err
					}
					s.Fields[fieldTarget] = value
					return "field", nil
				},
			},
		}, b.profileEditSteps(constants.VerbEditMember)...),
	}
}

func (b *Bot) sessionMember(ctx context.Context, s *Session) (*gormModels.Member, error) {
	raw, _ := s.Field(fieldTarget)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, corrupt("%s target %q", s.Flow, raw)
	}
	return b.Members.Get(ctx, id)
}

func (b *Bot) profileEditSteps(againVerb string) []*Step {
	return []*Step{
		{
			Name:  "field",
			Verbs: []string{constants.VerbEditProfileField},
			Prompt: func(ctx context.Context, s *Session) (dtos.OutboundMessage, error) {
				m, err := b.sessionMember(ctx, s)
				if err != nil {
					return dtos.OutboundMessage{}, err
				}
				msg := dtos.OutboundMessage{Text: "Qual dado deseja alterar?\n\n" + memberProfile(m)}
				for _, f := range profileFields {
					label := fmt.Sprintf("%s: %s", f.Label, orDash(profileValue(m, f.Column)))
					msg.Buttons = append(msg.Buttons, dtos.Row(button(label, constants.VerbEditProfileField, f.Column)))
				}
				msg.Buttons = append(msg.Buttons, dtos.Row(cancelFlowButton()))
				return msg, nil
			},
			Receive: func(_ context.Context, _ *Turn, s *Session, value string) (string, error) {
				if _, ok := lookupField(profileFields, value); !ok {
					return "", invalid(constants.MsgChooseOption)
				}
				s.Fields[fieldEditField] = value
				return "value", nil
			},
		},
		{
			Name: "value",
			Text: true,
			Choices: func(s *Session) []choice {
				if s.Fields[fieldEditField] == "grade" {
					return b.gradeChoices()
				}
				return nil
			},
			Prompt: func(ctx context.Context, s *Session) (dtos.OutboundMessage, error) {
				m, err := b.sessionMember(ctx, s)
				if err != nil {
					return dtos.OutboundMessage{}, err
				}
				f, ok := lookupField(profileFields, s.Fields[fieldEditField])
				if !ok {
					return dtos.OutboundMessage{}, corrupt("profile field %q", s.Fields[fieldEditField])
				}
				text := fmt.Sprintf("Novo valor para %s (atual: %s):", f.Label, orDash(profileValue(m, f.Column)))
				if f.Column == "grade" {
					return dtos.OutboundMessage{Text: text, Buttons: choiceRows(b.gradeChoices())}, nil
				}
				return dtos.OutboundMessage{Text: text, Buttons: [][]dtos.Button{dtos.Row(cancelFlowButton())}}, nil
			},
			Receive: func(ctx context.Context, t *Turn, s *Session, value string) (string, error) {
				m, err := b.sessionMember(ctx, s)
				if err != nil {
					return "", err
				}
				column := s.Fields[fieldEditField]
				v, err := b.parseProfileValue(column, value)
				if err != nil {
					return "", err
				}
				if err := b.Members.UpdateField(ctx, m.UserID, column, v); err != nil {
					return "", err
				}
				updated, err := b.Members.Get(ctx, m.UserID)
				if err != nil {
					return "", err
				}
				return stateDone, t.Reply(ctx, dtos.OutboundMessage{
					Text: "✅ Cadastro atualizado.\n\n" + memberProfile(updated),
					Buttons: [][]dtos.Button{
						dtos.Row(button("✏️ Alterar outro dado", againVerb)),
						dtos.Row(mainMenuButton()),
					},
				})
			},
		},
	}
}

func (b *Bot) parseProfileValue(column, value string) (string, error) {
	switch column {
	case "name", "lodge_name", "origin":
		return parseName(value)
	case "birth_date":
		return b.parseBirthDate(value)
	case "grade":
		return b.parseGrade(value)
	case "lodge_number":
		return parseDigits(value)
	case "jurisdiction":
		return parseRequired(value)
	}
	return "", corrupt("profile field %q", column)
}

/* ---------- event ---------- */

func (b *Bot) editEventFlow() *Flow {
	return &Flow{
		Name: flowEditEvent,
		Role: constants.RoleSecretary,
		Begin: func(ctx context.Context, t *Turn, s *Session) (string, error) {
			event, err := b.sessionEvent(ctx, s)
			if err != nil {
				return "", err
			}
			if !canManage(t, event) {
				return "", ErrPermissionDenied
			}
			if !event.IsActive() {
				return "", services.ErrEventNotActive
			}
			return "field", nil
		},
		Steps: []*Step{
			{
				Name:   "field",
				Verbs:  []string{constants.VerbEditEventField},
				Prompt: b.promptEventField,
				Receive: func(_ context.Context, _ *Turn, s *Session, value string) (string, error) {
					if _, ok := lookupField(eventFields, value); !ok {
						return "", invalid(constants.MsgChooseOption)
					}
					s.Fields[fieldEditField] = value
					return "value", nil
				},
			},
			{
				Name: "value",
				Text: true,
				Choices: func(s *Session) []choice {
					return b.eventValueChoices(s.Fields[fieldEditField])
				},
				Prompt:  b.promptEventValue,
				Receive: b.receiveEventValue,
			},
		},
	}
}

func (b *Bot) promptEventField(ctx context.Context, s *Session) (dtos.OutboundMessage, error) {
	event, err := b.sessionEvent(ctx, s)
	if err != nil {
		return dtos.OutboundMessage{}, err
	}
	msg := dtos.OutboundMessage{Text: "Qual campo deseja alterar?\n\n" + eventDetails(event)}
	for i := 0; i < len(eventFields); i += 2 {
		row := dtos.Row(button(eventFields[i].Label, constants.VerbEditEventField, eventFields[i].Column))
		if i+1 < len(eventFields) {
			row = append(row, button(eventFields[i+1].Label, constants.VerbEditEventField, eventFields[i+1].Column))
		}
		msg.Buttons = append(msg.Buttons, row)
	}
	msg.Buttons = append(msg.Buttons, dtos.Row(cancelFlowButton()))
	return msg, nil
}

// eventValueChoices returns the buttons for columns edited by choice.
func (b *Bot) eventValueChoices(column string) []choice {
	switch column {
	case "min_grade":
		return b.gradeChoices()
	case "session_type":
		return choicesOf(b.Catalog.SessionTypes...)
	case "rite":
		return choicesOf(b.Catalog.Rites...)
	case "dress_code":
		return choicesOf(b.Catalog.DressCodes...)
	case "meal_policy":
		return append([]choice{{Label: "Sem ágape", Value: string(constants.MealPolicyNone)}}, mealPolicyChoices...)
	case "notes":
		return []choice{{Label: "🧹 Limpar", Value: skipValue}}
	}
	return nil
}

func (b *Bot) promptEventValue(ctx context.Context, s *Session) (dtos.OutboundMessage, error) {
	event, err := b.sessionEvent(ctx, s)
	if err != nil {
		return dtos.OutboundMessage{}, err
	}
	column := s.Fields[fieldEditField]
	if _, ok := lookupField(eventFields, column); !ok {
		return dtos.OutboundMessage{}, corrupt("event field %q", column)
	}
	text := fmt.Sprintf("Novo valor para %s (atual: %s):", eventFieldLabel(column), orDash(eventValue(event, column)))
	return dtos.OutboundMessage{Text: text, Buttons: choiceRows(b.eventValueChoices(column))}, nil
}

func (b *Bot) parseEventValue(column, value string) (string, error) {
	switch column {
	case "date":
		return b.parseEventDate(value)
	case "time":
		return parseClock(value)
	case "lodge_name", "origin":
		return parseName(value)
	case "lodge_number":
		return parseDigits(value)
	case "jurisdiction", "address":
		return parseRequired(value)
	case "notes":
		return optionalText(value), nil
	}
	choices := b.eventValueChoices(column)
	for _, c := range choices {
		if c.Value == value {
			return value, nil
		}
	}
	return "", invalid(constants.MsgChooseOption)
}

func (b *Bot) receiveEventValue(ctx context.Context, t *Turn, s *Session, value string) (string, error) {
	event, err := b.sessionEvent(ctx, s)
	if err != nil {
		return "", err
	}
	column := s.Fields[fieldEditField]
	v, err := b.parseEventValue(column, value)
	if err != nil {
		return "", err
	}
	updated, err := b.Events.UpdateField(ctx, event, column, v)
	if err != nil {
		return "", err
	}

	text := "✅ Sessão atualizada."
	if err := b.publish(ctx, updated.ChannelID, changeNotice(updated, column)); err != nil {
		text = "✅ Sessão atualizada, mas não consegui avisar o canal."
	}
	return stateDone, t.Reply(ctx, dtos.OutboundMessage{
		Text: text + "\n\n" + eventDetails(updated),
		Buttons: [][]dtos.Button{
			dtos.Row(button("✏️ Alterar outro campo", constants.VerbEditEvent, updated.Key)),
			dtos.Row(mainMenuButton()),
		},
	})
}

// canManage reports whether the actor may change the event: its secretary
// or any administrator.
func canManage(t *Turn, e *gormModels.Event) bool {
	return t.Actor.IsAdmin() || e.SecretaryID == t.In.UserID
}
