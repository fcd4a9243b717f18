package providers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bode-andarilho/agenda/internal/models/dtos"
)

// ToInteraction strips a Telegram update down to what the bot routes on.
// Updates carrying neither text nor a button press are skipped.
func ToInteraction(u tgbotapi.Update) (dtos.Interaction, bool) {
	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		cq := u.CallbackQuery
		in := dtos.Interaction{
			UpdateID:   int64(u.UpdateID),
			UserID:     cq.From.ID,
			UserName:   cq.From.FirstName,
			ChatID:     cq.From.ID,
			ChatKind:   dtos.ChatPrivate,
			Command:    cq.Data,
			CallbackID: cq.ID,
		}
		if cq.Message != nil && cq.Message.Chat != nil {
			in.ChatID = cq.Message.Chat.ID
			in.ChatKind = chatKind(cq.Message.Chat.Type)
			in.Message = &dtos.MessageRef{ChatID: cq.Message.Chat.ID, MessageID: int64(cq.Message.MessageID)}
		}
		return in, cq.Data != ""

	case u.Message != nil && u.Message.From != nil && u.Message.Chat != nil && u.Message.Text != "":
		m := u.Message
		if m.From.IsBot {
			return dtos.Interaction{}, false
		}
		return dtos.Interaction{
			UpdateID: int64(u.UpdateID),
			UserID:   m.From.ID,
			UserName: m.From.FirstName,
			ChatID:   m.Chat.ID,
			ChatKind: chatKind(m.Chat.Type),
			Text:     m.Text,
		}, true
	}
	return dtos.Interaction{}, false
}

func chatKind(telegramType string) dtos.ChatKind {
	if telegramType == "private" {
		return dtos.ChatPrivate
	}
	return dtos.ChatShared
}
