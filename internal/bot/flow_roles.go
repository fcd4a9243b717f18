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
	flowPromote = "promote"
	flowDemote  = "demote"
)

// roleChange describes one direction of a role mutation.
type roleChange struct {
	from, to constants.Role
	question string
	verb     string
}

var roleChanges = map[string]roleChange{
	flowPromote: {
		from:     constants.RoleMember,
		to:       constants.RoleSecretary,
		question: "⬆️ Quem deseja promover a secretário?",
		verb:     "promovido a secretário",
	},
	flowDemote: {
		from:     constants.RoleSecretary,
		to:       constants.RoleMember,
		question: "⬇️ Qual secretário deseja rebaixar a membro?",
		verb:     "rebaixado a membro",
	},
}

var yesNoChoices = []choice{
	{Label: "✅ Sim", Value: "yes"},
	{Label: "❌ Não", Value: "no"},
}

func (b *Bot) roleChangeFlow(name string) *Flow {
	change := roleChanges[name]
	return &Flow{
		Name: name,
		Role: constants.RoleAdmin,
		Steps: []*Step{
			{
				Name:   "member",
				Prompt: b.memberPicker(change.question, change.from),
				Receive: func(ctx context.Context, _ *Turn, s *Session, value string) (string, error) {
					if _, err := b.pickMember(ctx, value, change.from); err != nil {
						return "", err
					}
					s.Fields[fieldTarget] = value
					return "confirm", nil
				},
			},
			{
				Name: "confirm",
				Prompt: func(ctx context.Context, s *Session) (dtos.OutboundMessage, error) {
					m, err := b.sessionMember(ctx, s)
					if err != nil {
						return dtos.OutboundMessage{}, err
					}
					return dtos.OutboundMessage{
						Text:    fmt.Sprintf("Confirma que %s (%s) será %s?", m.Name, m.Lodge(), change.verb),
						Buttons: choiceRows(yesNoChoices),
					}, nil
				},
				Receive: func(ctx context.Context, t *Turn, s *Session, value string) (string, error) {
					switch value {
					case "no":
						return stateDone, t.Reply(ctx, dtos.OutboundMessage{
							Text:    constants.MsgFlowCancelled,
							Buttons: [][]dtos.Button{dtos.Row(mainMenuButton())},
						})
					case "yes":
					default:
						return "", invalid(constants.MsgChooseOption)
					}
					m, err := b.sessionMember(ctx, s)
					if err != nil {
						return "", err
					}
					if err := b.Members.SetRole(ctx, m.UserID, change.to); err != nil {
						return "", err
					}
					return stateDone, t.Reply(ctx, dtos.OutboundMessage{
						Text:    fmt.Sprintf("✅ %s foi %s.", m.Name, change.verb),
						Buttons: [][]dtos.Button{dtos.Row(button("⚙️ Área do administrador", constants.VerbAdminArea))},
					})
				},
			},
		},
	}
}

// memberPicker lists members as choose buttons, optionally only those
// holding role.
func (b *Bot) memberPicker(question string, role constants.Role) func(context.Context, *Session) (dtos.OutboundMessage, error) {
	return func(ctx context.Context, _ *Session) (dtos.OutboundMessage, error) {
		var (
			members []gormModels.Member
			err     error
		)
		if role == "" {
			members, err = b.Members.List(ctx)
		} else {
			members, err = b.Members.ListByRole(ctx, role)
		}
		if err != nil {
			return dtos.OutboundMessage{}, err
		}
		if len(members) == 0 {
			return dtos.OutboundMessage{
				Text:    "Nenhum membro elegível no momento.",
				Buttons: [][]dtos.Button{dtos.Row(cancelFlowButton())},
			}, nil
		}
		choices := make([]choice, 0, len(members))
		for _, m := range members {
			choices = append(choices, choice{
				Label: fmt.Sprintf("%s · %s", m.Name, m.Lodge()),
				Value: strconv.FormatInt(m.UserID, 10),
			})
		}
		return dtos.OutboundMessage{Text: question, Buttons: choiceRows(choices)}, nil
	}
}

// pickMember checks a picked member id, and its current role when role is
// set.
func (b *Bot) pickMember(ctx context.Context, value string, role constants.Role) (*gormModels.Member, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, invalid(constants.MsgChooseOption)
	}
	m, err := b.Members.Get(ctx, id)
	if errors.Is(err, services.ErrNotFound) {
		return nil, invalid(constants.MsgMemberNotFound)
	}
	if err != nil {
		return nil, err
	}
	if role != "" && constants.NormalizeRole(string(m.Role)) != role {
		return nil, invalid("Este membro não é elegível para esta alteração.")
	}
	return m, nil
}
