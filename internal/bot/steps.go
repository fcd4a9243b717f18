package bot

import (
	"context"
	"strings"

	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/models/dtos"
)

// choice is one button of a choice step: the label shown and the value
// stored.
type choice struct {
	Label string
	Value string
}

func choicesOf(values ...string) []choice {
	out := make([]choice, 0, len(values))
	for _, v := range values {
		out = append(out, choice{Label: v, Value: v})
	}
	return out
}

// choiceRows lays choices out two per row, followed by a cancel row.
func choiceRows(choices []choice) [][]dtos.Button {
	var rows [][]dtos.Button
	for i := 0; i < len(choices); i += 2 {
		row := []dtos.Button{button(choices[i].Label, constants.VerbChoose, choices[i].Value)}
		if i+1 < len(choices) {
			row = append(row, button(choices[i+1].Label, constants.VerbChoose, choices[i+1].Value))
		}
		rows = append(rows, row)
	}
	return append(rows, dtos.Row(cancelFlowButton()))
}

func hasChoice(choices []choice, v string) bool {
	for _, c := range choices {
		if c.Value == v {
			return true
		}
	}
	return false
}

func noChoices(*Session) []choice { return nil }

func staticChoices(choices []choice) func(*Session) []choice {
	return func(*Session) []choice { return choices }
}

func staticPrompt(text string) func(context.Context, *Session) (dtos.OutboundMessage, error) {
	return func(context.Context, *Session) (dtos.OutboundMessage, error) {
		return dtos.OutboundMessage{
			Text:    text,
			Buttons: [][]dtos.Button{dtos.Row(cancelFlowButton())},
		}, nil
	}
}

// textStep collects one typed value, normalized by parse, into Fields[name].
func textStep(name, prompt string, parse func(string) (string, error), next string) *Step {
	return &Step{
		Name:    name,
		Text:    true,
		Choices: noChoices,
		Prompt:  staticPrompt(prompt),
		Receive: func(_ context.Context, _ *Turn, s *Session, value string) (string, error) {
			v, err := parse(value)
			if err != nil {
				return "", err
			}
			s.Fields[name] = v
			return next, nil
		},
	}
}

// choiceStep offers fixed buttons and stores the chosen value. Typed text
// matching a choice is accepted too.
func choiceStep(name, prompt string, choices []choice, next string) *Step {
	return &Step{
		Name:    name,
		Text:    true,
		Choices: staticChoices(choices),
		Prompt: func(context.Context, *Session) (dtos.OutboundMessage, error) {
			return dtos.OutboundMessage{Text: prompt, Buttons: choiceRows(choices)}, nil
		},
		Receive: func(_ context.Context, _ *Turn, s *Session, value string) (string, error) {
			for _, c := range choices {
				if c.Value == value || strings.EqualFold(c.Label, value) {
					s.Fields[name] = c.Value
					return next, nil
				}
			}
			return "", invalid(constants.MsgChooseOption)
		},
	}
}

func parseRequired(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid(constants.MsgEmptyValue)
	}
	return v, nil
}

func parseName(v string) (string, error) {
	v, err := parseRequired(v)
	if err != nil {
		return "", err
	}
	return common.TitleName(v), nil
}

func parseDigits(v string) (string, error) {
	v = strings.TrimSpace(v)
	if !common.OnlyDigits(v) {
		return "", invalid(constants.MsgInvalidNumber)
	}
	return v, nil
}

func parseClock(v string) (string, error) {
	c, err := common.ParseClock(v)
	if err != nil {
		return "", invalid(constants.MsgInvalidTime)
	}
	return c, nil
}

// parseEventDate accepts a real calendar date from today on.
func (b *Bot) parseEventDate(v string) (string, error) {
	day, err := common.ParseDate(v, b.settings.Location)
	if err != nil {
		return "", invalid(constants.MsgInvalidDate)
	}
	if common.IsBeforeDay(day, b.now()) {
		return "", invalid(constants.MsgPastDate)
	}
	return common.FormatDate(day), nil
}

// parseBirthDate accepts a real calendar date in the past.
func (b *Bot) parseBirthDate(v string) (string, error) {
	day, err := common.ParseDate(v, b.settings.Location)
	if err != nil || !common.IsBeforeDay(day, b.now()) {
		return "", invalid(constants.MsgInvalidBirth)
	}
	return common.FormatDate(day), nil
}

func (b *Bot) gradeChoices() []choice {
	return choicesOf(b.Catalog.GradeNames()...)
}

func (b *Bot) parseGrade(v string) (string, error) {
	g, ok := b.Catalog.CanonicalGrade(v)
	if !ok {
		return "", invalid(constants.MsgChooseOption)
	}
	return g, nil
}

// reviewChoices close every summary step.
var reviewChoices = []choice{
	{Label: "✅ Confirmar", Value: "confirm"},
	{Label: "🔄 Recomeçar", Value: "restart"},
}
