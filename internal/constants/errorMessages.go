package constants

// User-facing texts. Kept in one place so flows and handlers stay consistent.
const (
	MsgWelcome = "Olá, irmão! Bem-vindo ao Bode Andarilho. 🐐\n\n" +
		"Aqui você encontra a agenda de sessões abertas a visitas " +
		"e confirma sua presença com poucos toques.\n\n" +
		"Para começar, preciso de alguns dados seus."
	MsgWelcomeBack = "Bem-vindo de volta, irmão %s! 🐐\n\nO que deseja fazer?"
	MsgMainMenu    = "O que deseja fazer? 🐐"

	MsgGenericError = "Algo deu errado por aqui, irmão. 😕\n\n" +
		"Tente novamente em alguns instantes. " +
		"Se o problema persistir, avise um administrador do grupo."
	MsgFlowAborted = "Desculpe, irmão, perdi o fio desta conversa. 😕\n" +
		"Nada foi salvo. Use /start para recomeçar."
	MsgSessionExpired = "Essa sessão expirou, irmão.\n\nUse /start para continuar. 🐐"
	MsgUnrecognized   = "Função em desenvolvimento ou comando não reconhecido."
	MsgPermissionDenied = "⛔ Você não tem permissão para acessar esta função."
	MsgFlowBusy       = "Você tem uma etapa em andamento. Conclua-a ou envie /cancelar antes de iniciar outra."
	MsgFlowCancelled  = "Operação cancelada. Use /start para voltar ao menu principal."
	MsgNothingToCancelFlow = "Não há nenhuma operação em andamento."
	MsgCheckPrivate   = "🔔 Continuo com você no privado. Verifique suas mensagens."
	MsgGroupOnly      = "Olá! Para interagir comigo, use os botões nas mensagens de evento " +
		"ou envie /start no meu chat privado. 🐐"
	MsgTextWithoutFlow = "Não entendi, irmão. Use /start para abrir o menu. 🐐"
	MsgRateLimited = "Calma, irmão! Muitos toques em sequência. Tente de novo em instantes."

	MsgNotRegistered = "Seu cadastro não foi encontrado. Envie /start para se cadastrar."
	MsgEventNotFound = "Evento não encontrado. Ele pode ter sido cancelado ou alterado."
	MsgMemberNotFound = "Membro não encontrado."
	MsgNoEvents      = "Não há eventos ativos no momento. Volte em breve, irmão."

	MsgAlreadyConfirmed  = "Você já confirmou presença para este evento."
	MsgConfirmed         = "✅ Presença confirmada, irmão %s!\n\nEvento: %s\nÁgape: %s\n\nAté lá! 🐐"
	MsgEventUnavailable  = "Este evento não está mais disponível para confirmações."
	MsgInvalidMealTier   = "Opção de ágape inválida para este evento."
	MsgAttendanceCancelled = "❌ Presença cancelada.\n\nEvento: %s\n\nSe mudar de ideia, basta confirmar novamente. 🐐"
	MsgNothingToCancel   = "Não foi possível cancelar. Você não estava confirmado para este evento."
	MsgNoConfirmations   = "Você ainda não confirmou presença em nenhum evento."

	MsgInvalidDate     = "Data inválida. Use o formato DD/MM/AAAA (ex: 25/03/2026)."
	MsgPastDate        = "A data informada já passou. Informe uma data futura."
	MsgInvalidBirth    = "Data de nascimento inválida. Use o formato DD/MM/AAAA."
	MsgInvalidTime     = "Horário inválido. Use o formato HH:MM (ex: 19:30)."
	MsgInvalidNumber   = "Informe apenas números."
	MsgEmptyValue      = "O valor não pode ficar em branco."
	MsgChooseOption    = "Escolha uma das opções pelos botões."
)
