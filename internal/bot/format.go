package bot

import (
	"fmt"
	"strings"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
)

func button(label, verb string, args ...string) dtos.Button {
	return dtos.Button{Label: label, Command: EncodeCommand(verb, args...)}
}

func mainMenuButton() dtos.Button {
	return button("🏠 Menu principal", constants.VerbMainMenu)
}

func closeButton() dtos.Button {
	return button("✖️ Fechar", constants.VerbCloseMessage)
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "—"
	}
	return v
}

// eventDetails renders every field of an event.
func eventDetails(e *gormModels.Event) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 %s (%s) às %s\n", e.Date, e.Weekday, orDash(e.Time))
	fmt.Fprintf(&sb, "🏛 Loja: %s\n", e.Lodge())
	fmt.Fprintf(&sb, "📍 Oriente: %s\n", orDash(e.Origin))
	fmt.Fprintf(&sb, "⚜️ Potência: %s\n", orDash(e.Jurisdiction))
	fmt.Fprintf(&sb, "🔺 Grau mínimo: %s\n", orDash(e.MinGrade))
	fmt.Fprintf(&sb, "📜 Sessão: %s\n", orDash(e.SessionType))
	fmt.Fprintf(&sb, "📖 Rito: %s\n", orDash(e.Rite))
	fmt.Fprintf(&sb, "👔 Traje: %s\n", orDash(e.DressCode))
	fmt.Fprintf(&sb, "🍽 Ágape: %s\n", e.MealPolicy.Label())
	if e.Notes != "" {
		fmt.Fprintf(&sb, "📝 Observações: %s\n", e.Notes)
	}
	fmt.Fprintf(&sb, "🗺 Endereço: %s", orDash(e.Address))
	return sb.String()
}

// attendanceButtons derives the confirm buttons from the meal policy: one
// button when no meal is served, otherwise one with and one without.
func attendanceButtons(e *gormModels.Event) []dtos.Button {
	if !e.MealPolicy.ServesMeal() {
		return dtos.Row(button("✅ Confirmar presença", constants.VerbConfirmAttendance, e.Key, string(constants.MealTierNone)))
	}
	return dtos.Row(
		button("🍽 Confirmar com ágape", constants.VerbConfirmAttendance, e.Key, string(e.MealPolicy)),
		button("✅ Confirmar sem ágape", constants.VerbConfirmAttendance, e.Key, string(constants.MealTierNone)),
	)
}

// announcement is the message published to the event's channel.
func announcement(e *gormModels.Event) dtos.OutboundMessage {
	return dtos.OutboundMessage{
		Text:    "🐐 NOVA SESSÃO ABERTA A VISITAS\n\n" + eventDetails(e),
		Buttons: [][]dtos.Button{attendanceButtons(e)},
	}
}

func changeNotice(e *gormModels.Event, field string) dtos.OutboundMessage {
	return dtos.OutboundMessage{
		Text: fmt.Sprintf("✏️ EVENTO ALTERADO (%s)\n\n%s", eventFieldLabel(field), eventDetails(e)),
		Buttons: [][]dtos.Button{attendanceButtons(e)},
	}
}

func cancelNotice(e *gormModels.Event) dtos.OutboundMessage {
	return dtos.OutboundMessage{
		Text: fmt.Sprintf("🚫 SESSÃO CANCELADA\n\n📅 %s (%s)\n🏛 Loja: %s\n\nAs confirmações de presença foram removidas.",
			e.Date, e.Weekday, e.Lodge()),
	}
}

// ReminderMessage is the day-before reminder sent to a confirmed member.
func ReminderMessage(e *gormModels.Event, c *gormModels.Confirmation) dtos.OutboundMessage {
	return dtos.OutboundMessage{
		Text: fmt.Sprintf("⏰ Lembrete, irmão %s!\n\nAmanhã você tem sessão:\n\n%s\n\nÁgape: %s",
			c.Name, eventDetails(e), c.MealTier.Label()),
		Buttons: [][]dtos.Button{
			dtos.Row(button("❌ Cancelar presença", constants.VerbCancelAttendance, e.Key)),
		},
	}
}

func memberSummary(m *memberDraft) string {
	return fmt.Sprintf("👤 Nome: %s\n🎂 Nascimento: %s\n🔺 Grau: %s\n🏛 Loja: %s Nº %s\n📍 Oriente: %s\n⚜️ Potência: %s",
		m.Name, m.BirthDate, m.Grade, m.LodgeName, m.LodgeNumber, m.Origin, m.Jurisdiction)
}

func memberProfile(m *gormModels.Member) string {
	return fmt.Sprintf("👤 Nome: %s\n🎂 Nascimento: %s\n🔺 Grau: %s\n🏛 Loja: %s\n📍 Oriente: %s\n⚜️ Potência: %s\n🔑 Perfil: %s",
		m.Name, orDash(m.BirthDate), orDash(m.Grade), m.Lodge(), orDash(m.Origin), orDash(m.Jurisdiction), m.Role.Label())
}

// attendeeList renders confirmations with a meal headcount for catering.
func attendeeList(e *gormModels.Event, list []gormModels.Confirmation, count dtos.Headcount) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 Presenças confirmadas\n%s\n\n", e.Key)
	if len(list) == 0 {
		sb.WriteString("Nenhuma confirmação até o momento.")
		return sb.String()
	}
	for i, c := range list {
		fmt.Fprintf(&sb, "%d. %s (%s), %s, %s\n", i+1, c.Name, orDash(c.Grade), c.Lodge, c.MealTier.Label())
	}
	fmt.Fprintf(&sb, "\nTotal: %d", count.Total)
	if e.MealPolicy.ServesMeal() {
		fmt.Fprintf(&sb, " (com ágape: %d, sem ágape: %d)", count.WithMeal, count.NoMeal)
	}
	return sb.String()
}

// eventButtonLabel is the short label used in event listings.
func eventButtonLabel(e *gormModels.Event) string {
	return fmt.Sprintf("%s · %s", e.Date, e.Lodge())
}

func eventList(title string, events []gormModels.Event, verb string, back dtos.Button) dtos.OutboundMessage {
	msg := dtos.OutboundMessage{Text: title}
	for i := range events {
		msg.Buttons = append(msg.Buttons, dtos.Row(button(eventButtonLabel(&events[i]), verb, events[i].Key)))
	}
	msg.Buttons = append(msg.Buttons, dtos.Row(back))
	return msg
}
