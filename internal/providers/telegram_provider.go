package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/models/dtos"
)

const (
	defaultTelegramURL = "https://api.telegram.org"
	// Telegram drops buttons whose callback data exceeds this many bytes.
	maxCallbackData = 64
)

// TelegramProvider talks to the Telegram Bot API and implements the bot's
// Transport.
type TelegramProvider struct {
	api *tgbotapi.BotAPI
}

// NewTelegramProvider connects to the Bot API at baseURL and checks the
// token with getMe.
func NewTelegramProvider(baseURL, token string) (*TelegramProvider, error) {
	if token == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidToken,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidToken),
		}
	}
	if baseURL == "" {
		baseURL = defaultTelegramURL
	}
	endpoint := strings.TrimRight(baseURL, "/") + "/bot%s/%s"

	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{
		Timeout: 10 * time.Second,
	})
	if err != nil {
		return nil, wrapTelegramError("getMe", err)
	}
	logging.Info("Connected to Telegram", "bot_username", api.Self.UserName)
	return &TelegramProvider{api: api}, nil
}

// ============================================================================
// Transport
// ============================================================================

func (p *TelegramProvider) SendMessage(ctx context.Context, chatID int64, msg dtos.OutboundMessage) (dtos.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return dtos.MessageRef{}, cancelled(err)
	}
	out := tgbotapi.NewMessage(chatID, msg.Text)
	if markup := keyboard(msg.Buttons); markup != nil {
		out.ReplyMarkup = *markup
	}
	sent, err := p.api.Send(out)
	if err != nil {
		return dtos.MessageRef{}, wrapTelegramError("sendMessage", err)
	}
	ref := dtos.MessageRef{ChatID: chatID, MessageID: int64(sent.MessageID)}
	if sent.Chat != nil {
		ref.ChatID = sent.Chat.ID
	}
	return ref, nil
}

// EditMessage replaces text and buttons. Editing to identical content is
// not an error.
func (p *TelegramProvider) EditMessage(ctx context.Context, ref dtos.MessageRef, msg dtos.OutboundMessage) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}
	edit := tgbotapi.NewEditMessageText(ref.ChatID, int(ref.MessageID), msg.Text)
	edit.ReplyMarkup = keyboard(msg.Buttons)

	_, err := p.api.Request(edit)
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "message is not modified") {
		return nil
	}
	if err != nil {
		return wrapTelegramError("editMessageText", err)
	}
	return nil
}

func (p *TelegramProvider) DeleteMessage(ctx context.Context, ref dtos.MessageRef) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}
	if _, err := p.api.Request(tgbotapi.NewDeleteMessage(ref.ChatID, int(ref.MessageID))); err != nil {
		return wrapTelegramError("deleteMessage", err)
	}
	return nil
}

func (p *TelegramProvider) AcknowledgeInteraction(ctx context.Context, interactionID, notice string) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}
	if _, err := p.api.Request(tgbotapi.NewCallback(interactionID, notice)); err != nil {
		return wrapTelegramError("answerCallbackQuery", err)
	}
	return nil
}

// SetWebhook points Telegram at url; secret comes back in the
// X-Telegram-Bot-Api-Secret-Token header of every update.
func (p *TelegramProvider) SetWebhook(ctx context.Context, url, secret string) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	if err := params.AddInterface("allowed_updates", []string{"message", "callback_query"}); err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeRequestRejected,
			Message: "Failed to encode allowed updates",
			Err:     err,
		}
	}
	if _, err := p.api.MakeRequest("setWebhook", params); err != nil {
		return wrapTelegramError("setWebhook", err)
	}
	return nil
}

func keyboard(rows [][]dtos.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	var out [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		var buttons []tgbotapi.InlineKeyboardButton
		for _, b := range row {
			if len(b.Command) > maxCallbackData {
				logging.Warn("Callback data exceeds Telegram limit", "command", b.Command, "bytes", len(b.Command))
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Command))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(out...)
	return &markup
}

// ============================================================================
// Error Mapping
// ============================================================================

func cancelled(err error) error {
	return &ProviderError{
		Code:    constants.ErrCodeNetworkError,
		Message: "Request not sent",
		Err:     err,
	}
}

// wrapTelegramError maps a failed Bot API call onto an error code
func wrapTelegramError(method string, err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		pe := &ProviderError{
			Message:    fmt.Sprintf("telegram %s failed", method),
			Details:    apiErr.Message,
			StatusCode: apiErr.Code,
		}
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusNotFound:
			pe.Code = constants.ErrCodeInvalidToken
		case http.StatusForbidden:
			pe.Code = constants.ErrCodeChatUnreachable
		case http.StatusTooManyRequests:
			pe.Code = constants.ErrCodeRateLimited
			if apiErr.RetryAfter > 0 {
				pe.Details = fmt.Sprintf("%s (retry after %ds)", apiErr.Message, apiErr.RetryAfter)
			}
		default:
			pe.Code = constants.ErrCodeRequestRejected
		}
		return pe
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidResponse,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidResponse),
			Err:     err,
		}
	}
	return &ProviderError{
		Code:    constants.ErrCodeNetworkError,
		Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
		Err:     err,
	}
}
