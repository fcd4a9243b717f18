package jobs

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/metrics"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
)

type mockEventLister struct {
	activeOnFunc func(ctx context.Context, date string) ([]gormModels.Event, error)
}

func (m *mockEventLister) ActiveOn(ctx context.Context, date string) ([]gormModels.Event, error) {
	return m.activeOnFunc(ctx, date)
}

type mockAttendeeLister struct {
	attendeesFunc func(ctx context.Context, eventID string) ([]gormModels.Confirmation, error)
}

func (m *mockAttendeeLister) Attendees(ctx context.Context, eventID string) ([]gormModels.Confirmation, error) {
	return m.attendeesFunc(ctx, eventID)
}

type recordingSender struct {
	mu   sync.Mutex
	sent map[int64][]string
	fail map[int64]bool
}

func (s *recordingSender) SendMessage(ctx context.Context, chatID int64, msg dtos.OutboundMessage) (dtos.MessageRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[chatID] {
		return dtos.MessageRef{}, errors.New("bot was blocked by the user")
	}
	if s.sent == nil {
		s.sent = map[int64][]string{}
	}
	s.sent[chatID] = append(s.sent[chatID], msg.Text)
	return dtos.MessageRef{ChatID: chatID, MessageID: 1}, nil
}

func reminderFixture(t *testing.T, sender *recordingSender) (*ReminderJob, *metrics.MetricsRegistry, *string) {
	t.Helper()
	var askedDate string
	event := gormModels.Event{
		ID: "evt-1", Key: "11/01/2026 — Loja Fraternidade", Date: "11/01/2026", Weekday: "domingo",
		Time: "19:30", LodgeName: "Loja Fraternidade", MealPolicy: constants.MealPolicyFree,
	}
	events := &mockEventLister{activeOnFunc: func(ctx context.Context, date string) ([]gormModels.Event, error) {
		askedDate = date
		return []gormModels.Event{event}, nil
	}}
	attendees := &mockAttendeeLister{attendeesFunc: func(ctx context.Context, eventID string) ([]gormModels.Confirmation, error) {
		return []gormModels.Confirmation{
			{EventID: eventID, UserID: 10, Name: "João", MealTier: constants.MealTierFree},
			{EventID: eventID, UserID: 11, Name: "Pedro", MealTier: constants.MealTierNone},
		}, nil
	}}

	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	job := NewReminderJob(events, attendees, sender, common.NewCacheService(time.Hour, time.Hour), reg, loc)
	// 01:30 UTC on the 10th is still the 9th in São Paulo
	job.now = func() time.Time { return time.Date(2026, 1, 10, 1, 30, 0, 0, time.UTC) }
	return job, reg, &askedDate
}

func TestReminderJob_SendsOncePerMember(t *testing.T) {
	sender := &recordingSender{}
	job, reg, askedDate := reminderFixture(t, sender)

	res, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if *askedDate != "10/01/2026" {
		t.Errorf("Expected tomorrow in the configured zone, got %s", *askedDate)
	}
	if res.Sent != 2 || res.Failed != 0 {
		t.Errorf("Expected 2 sent, got %+v", res)
	}
	if !strings.Contains(sender.sent[10][0], "João") {
		t.Errorf("Expected personalised reminder, got %q", sender.sent[10][0])
	}

	res, _ = job.Run(context.Background())
	if res.Sent != 0 || res.Skipped != 2 {
		t.Errorf("Expected a repeated run to skip everyone, got %+v", res)
	}
	if len(sender.sent[10]) != 1 {
		t.Errorf("Expected one reminder for member 10, got %d", len(sender.sent[10]))
	}
	if got := testutil.ToFloat64(reg.RemindersSentTotal.WithLabelValues("skipped")); got != 2 {
		t.Errorf("Expected 2 skipped in metrics, got %v", got)
	}
}

func TestReminderJob_FailedDeliveryIsRetried(t *testing.T) {
	sender := &recordingSender{fail: map[int64]bool{11: true}}
	job, _, _ := reminderFixture(t, sender)

	res, _ := job.Run(context.Background())
	if res.Sent != 1 || res.Failed != 1 {
		t.Fatalf("Expected 1 sent and 1 failed, got %+v", res)
	}

	sender.fail[11] = false
	res, _ = job.Run(context.Background())
	if res.Sent != 1 || res.Skipped != 1 {
		t.Errorf("Expected the failed member to be retried, got %+v", res)
	}
}

func TestReminderJob_ListFailure(t *testing.T) {
	job := NewReminderJob(
		&mockEventLister{activeOnFunc: func(ctx context.Context, date string) ([]gormModels.Event, error) {
			return nil, errors.New("connection reset")
		}},
		&mockAttendeeLister{},
		&recordingSender{},
		common.NewCacheService(time.Hour, time.Hour),
		nil,
		nil,
	)
	if _, err := job.Run(context.Background()); err == nil {
		t.Error("Expected listing failure to be returned")
	}
}

func TestReminderJob_RunScheduledStopsOnCancel(t *testing.T) {
	job, _, _ := reminderFixture(t, &recordingSender{})
	job.now = time.Now
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.RunScheduled(ctx, "0 12 * * *")
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected scheduler to stop after cancel")
	}
}
