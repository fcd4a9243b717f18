package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
	"bode-andarilho/agenda/internal/services"
)

type mockBot struct {
	got []dtos.Interaction
}

func (m *mockBot) HandleInteraction(ctx context.Context, in dtos.Interaction) {
	m.got = append(m.got, in)
}

type mockAcks struct {
	notices []string
}

func (m *mockAcks) AcknowledgeInteraction(ctx context.Context, id, notice string) error {
	m.notices = append(m.notices, notice)
	return nil
}

type limiterFunc func(int64) bool

func (f limiterFunc) Allow(userID int64) bool { return f(userID) }

type mockEvents struct {
	getFunc       func(ctx context.Context, id string) (*gormModels.Event, error)
	headcountFunc func(ctx context.Context, id string) (dtos.Headcount, error)
}

func (m *mockEvents) Get(ctx context.Context, id string) (*gormModels.Event, error) {
	return m.getFunc(ctx, id)
}

func (m *mockEvents) Headcount(ctx context.Context, id string) (dtos.Headcount, error) {
	return m.headcountFunc(ctx, id)
}

type mockAttendees struct {
	attendeesFunc func(ctx context.Context, id string) ([]gormModels.Confirmation, error)
}

func (m *mockAttendees) Attendees(ctx context.Context, id string) ([]gormModels.Confirmation, error) {
	return m.attendeesFunc(ctx, id)
}

const callbackUpdate = `{"update_id":1,"callback_query":{"id":"cb","from":{"id":7,"first_name":"João"},
	"message":{"message_id":3,"chat":{"id":-100,"type":"supergroup"}},"data":"show_event|x"}}`

func webhookRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Post("/webhook/{secret}", h.TelegramWebhook())
	return r
}

func TestTelegramWebhook_DispatchesInteraction(t *testing.T) {
	bot := &mockBot{}
	h := NewHandlers(&Dependencies{Bot: bot, WebhookSecret: "s3cret"})

	req := httptest.NewRequest(http.MethodPost, "/webhook/s3cret", strings.NewReader(callbackUpdate))
	req.Header.Set(secretHeader, "s3cret")
	rr := httptest.NewRecorder()
	webhookRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if len(bot.got) != 1 || bot.got[0].Command != "show_event|x" || bot.got[0].UserID != 7 {
		t.Errorf("Expected one dispatched interaction, got %+v", bot.got)
	}
}

func TestTelegramWebhook_WrongSecret(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		header string
		secret string
	}{
		{"wrong path", "/webhook/nope", "", "s3cret"},
		{"wrong header", "/webhook/s3cret", "nope", "s3cret"},
		{"webhook disabled", "/webhook/anything", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bot := &mockBot{}
			h := NewHandlers(&Dependencies{Bot: bot, WebhookSecret: tc.secret})

			req := httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(callbackUpdate))
			if tc.header != "" {
				req.Header.Set(secretHeader, tc.header)
			}
			rr := httptest.NewRecorder()
			webhookRouter(h).ServeHTTP(rr, req)

			if rr.Code != http.StatusNotFound {
				t.Errorf("Expected status 404, got %d", rr.Code)
			}
			if len(bot.got) != 0 {
				t.Errorf("Expected no dispatch, got %d", len(bot.got))
			}
		})
	}
}

func TestTelegramWebhook_BadBodyStillOK(t *testing.T) {
	bot := &mockBot{}
	h := NewHandlers(&Dependencies{Bot: bot, WebhookSecret: "s3cret"})

	req := httptest.NewRequest(http.MethodPost, "/webhook/s3cret", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	webhookRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || len(bot.got) != 0 {
		t.Errorf("Expected 200 with no dispatch, got %d and %d interactions", rr.Code, len(bot.got))
	}
}

func TestTelegramWebhook_RateLimited(t *testing.T) {
	bot := &mockBot{}
	acks := &mockAcks{}
	h := NewHandlers(&Dependencies{
		Bot:           bot,
		Acks:          acks,
		Limiter:       limiterFunc(func(int64) bool { return false }),
		WebhookSecret: "s3cret",
	})

	req := httptest.NewRequest(http.MethodPost, "/webhook/s3cret", strings.NewReader(callbackUpdate))
	rr := httptest.NewRecorder()
	webhookRouter(h).ServeHTTP(rr, req)

	if len(bot.got) != 0 {
		t.Error("Expected limited interaction not to reach the bot")
	}
	if len(acks.notices) != 1 || acks.notices[0] != constants.MsgRateLimited {
		t.Errorf("Expected rate limit notice, got %v", acks.notices)
	}
}

func exportFixture(t *testing.T) (*Handlers, *common.URLSigner) {
	t.Helper()
	signer := common.NewURLSigner([]byte("test-key"), common.NewCacheService(time.Minute, time.Minute))

	event := &gormModels.Event{
		ID: "evt-1", Key: "25/03/2026 — Loja Fraternidade", Date: "25/03/2026", Weekday: "quarta-feira",
		Time: "19:30", LodgeName: "Loja Fraternidade", LodgeNumber: "12", MealPolicy: constants.MealPolicyPaidShared,
	}
	h := NewHandlers(&Dependencies{
		Signer: signer,
		Events: &mockEvents{
			getFunc: func(ctx context.Context, id string) (*gormModels.Event, error) {
				if id != event.ID {
					return nil, services.ErrNotFound
				}
				return event, nil
			},
			headcountFunc: func(ctx context.Context, id string) (dtos.Headcount, error) {
				return dtos.Headcount{Total: 2, WithMeal: 1, NoMeal: 1}, nil
			},
		},
		Attendees: &mockAttendees{
			attendeesFunc: func(ctx context.Context, id string) ([]gormModels.Confirmation, error) {
				return []gormModels.Confirmation{
					{Name: "João", MealTier: constants.MealTierPaidShared},
					{Name: "Pedro", MealTier: constants.MealTierNone},
				}, nil
			},
		},
	})
	return h, signer
}

func TestExportAttendees_Success(t *testing.T) {
	h, signer := exportFixture(t)
	token, err := signer.Sign("evt-1", 5, time.Minute)
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}

	rr := httptest.NewRecorder()
	h.ExportAttendees().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/export/attendees?token="+url.QueryEscape(token), nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response struct {
		Status string              `json:"status"`
		Data   dtos.AttendeeExport `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Expected status ok, got %s", response.Status)
	}
	if len(response.Data.Attendees) != 2 || response.Data.Headcount.WithMeal != 1 {
		t.Errorf("Unexpected export %+v", response.Data)
	}
	if response.Data.Lodge != "Loja Fraternidade Nº 12" {
		t.Errorf("Expected lodge with number, got %q", response.Data.Lodge)
	}
}

func TestExportAttendees_SingleUse(t *testing.T) {
	h, signer := exportFixture(t)
	token, _ := signer.Sign("evt-1", 5, time.Minute)
	target := "/api/v1/export/attendees?token=" + url.QueryEscape(token)

	first := httptest.NewRecorder()
	h.ExportAttendees().ServeHTTP(first, httptest.NewRequest(http.MethodGet, target, nil))
	second := httptest.NewRecorder()
	h.ExportAttendees().ServeHTTP(second, httptest.NewRequest(http.MethodGet, target, nil))

	if first.Code != http.StatusOK || second.Code != http.StatusGone {
		t.Errorf("Expected 200 then 410, got %d then %d", first.Code, second.Code)
	}
}

func TestExportAttendees_BadTokens(t *testing.T) {
	h, signer := exportFixture(t)
	missing, _ := signer.Sign("gone", 5, time.Minute)

	cases := []struct {
		name  string
		query string
		want  int
	}{
		{"missing", "", http.StatusBadRequest},
		{"garbage", "?token=abc", http.StatusUnauthorized},
		{"unknown event", "?token=" + url.QueryEscape(missing), http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ExportAttendees().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/export/attendees"+tc.query, nil))
			if rr.Code != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, rr.Code)
			}
			if strings.Contains(rr.Body.String(), "signature") {
				t.Error("Expected token error details to stay out of the response")
			}
		})
	}
}

func TestHealthCheckHandler(t *testing.T) {
	h := NewHandlers(&Dependencies{
		DB:    PingFunc(func(ctx context.Context) error { return nil }),
		Cache: PingFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
	})

	rr := httptest.NewRecorder()
	h.HealthCheckHandler(time.Now().Add(-time.Hour)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rr.Code)
	}
	var resp dtos.HealthCheckResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Services["database"].Status != "ok" || resp.Services["cache"].Status != "down" {
		t.Errorf("Unexpected services %+v", resp.Services)
	}
	if strings.Contains(rr.Body.String(), "refused") {
		t.Error("Expected raw error text to stay out of the response")
	}
}
