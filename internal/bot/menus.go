package bot

import (
	"bode-andarilho/agenda/internal/auth"
	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/models/dtos"
)

// mainMenu lists what the actor's role may do.
func mainMenu(text string, actor auth.Actor) dtos.OutboundMessage {
	rows := [][]dtos.Button{
		dtos.Row(button("📅 Próximas sessões", constants.VerbListEvents)),
		dtos.Row(button("✅ Minhas confirmações", constants.VerbMyConfirmations)),
		dtos.Row(button("👤 Meu cadastro", constants.VerbMyProfile)),
	}
	if actor.Allows(constants.RoleSecretary) {
		rows = append(rows, dtos.Row(button("📋 Área do secretário", constants.VerbSecretaryArea)))
	}
	if actor.Allows(constants.RoleAdmin) {
		rows = append(rows, dtos.Row(button("⚙️ Área do administrador", constants.VerbAdminArea)))
	}
	return dtos.OutboundMessage{Text: text, Buttons: rows}
}

func secretaryMenu() dtos.OutboundMessage {
	return dtos.OutboundMessage{
		Text: "📋 Área do secretário",
		Buttons: [][]dtos.Button{
			dtos.Row(button("➕ Cadastrar sessão", constants.VerbCreateEvent)),
			dtos.Row(button("🗂 Minhas sessões", constants.VerbMyEvents)),
			dtos.Row(mainMenuButton()),
		},
	}
}

func adminMenu() dtos.OutboundMessage {
	return dtos.OutboundMessage{
		Text: "⚙️ Área do administrador",
		Buttons: [][]dtos.Button{
			dtos.Row(button("👥 Listar membros", constants.VerbListMembers)),
			dtos.Row(button("✏️ Editar membro", constants.VerbEditMember)),
			dtos.Row(button("⬆️ Promover a secretário", constants.VerbPromote)),
			dtos.Row(button("⬇️ Rebaixar secretário", constants.VerbDemote)),
			dtos.Row(mainMenuButton()),
		},
	}
}
