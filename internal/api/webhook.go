package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/providers"
)

const (
	maxUpdateBytes     = 1 << 20
	interactionTimeout = 30 * time.Second
	secretHeader       = "X-Telegram-Bot-Api-Secret-Token"
)

// TelegramWebhook handles POST /webhook/{secret}
//
// Updates are handled before replying so one user's presses are applied in
// order. Anything but a rejected secret answers 200, otherwise Telegram
// redelivers the same update.
func (h *Handlers) TelegramWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.secretMatches(r) {
			http.NotFound(w, r)
			return
		}

		var update tgbotapi.Update
		if err := json.NewDecoder(io.LimitReader(r.Body, maxUpdateBytes)).Decode(&update); err != nil {
			logging.Warn("Discarding undecodable update", "error", err)
			w.WriteHeader(http.StatusOK)
			return
		}

		in, ok := providers.ToInteraction(update)
		if !ok {
			w.WriteHeader(http.StatusOK)
			return
		}

		// the bot keeps working after Telegram hangs up
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), interactionTimeout)
		defer cancel()

		if h.deps.Limiter != nil && !h.deps.Limiter.Allow(in.UserID) {
			logging.Warn("Interaction rate limited", "user_id", in.UserID, "update_id", in.UpdateID)
			if in.IsCallback() && h.deps.Acks != nil {
				if err := h.deps.Acks.AcknowledgeInteraction(ctx, in.CallbackID, constants.MsgRateLimited); err != nil {
					logging.Warn("Failed to acknowledge limited interaction", "error", err)
				}
			}
			w.WriteHeader(http.StatusOK)
			return
		}

		h.deps.Bot.HandleInteraction(ctx, in)
		w.WriteHeader(http.StatusOK)
	}
}

// secretMatches checks the path secret and, when Telegram sends it, the
// secret header. An unset secret disables the webhook.
func (h *Handlers) secretMatches(r *http.Request) bool {
	secret := h.deps.WebhookSecret
	if secret == "" {
		return false
	}
	if !equalSecret(chi.URLParam(r, "secret"), secret) {
		return false
	}
	if header := r.Header.Get(secretHeader); header != "" && !equalSecret(header, secret) {
		return false
	}
	return true
}

func equalSecret(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
