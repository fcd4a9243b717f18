package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"bode-andarilho/agenda/internal/auth"
	"bode-andarilho/agenda/internal/catalog"
	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/db/repositories"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
	"bode-andarilho/agenda/internal/services"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

const (
	adminID   int64 = 1
	channelID int64 = -100
)

type sentMessage struct {
	ChatID int64
	Msg    dtos.OutboundMessage
	Edited bool
}

// fakeTransport records everything the bot sends.
type fakeTransport struct {
	mu      sync.Mutex
	sent    []sentMessage
	acks    []string
	deleted []dtos.MessageRef
	nextID  int64

	// beforeSend runs ahead of every send and edit; an error fails the call.
	beforeSend func(chatID int64) error
}

func (f *fakeTransport) SendMessage(_ context.Context, chatID int64, msg dtos.OutboundMessage) (dtos.MessageRef, error) {
	if f.beforeSend != nil {
		if err := f.beforeSend(chatID); err != nil {
			return dtos.MessageRef{}, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Msg: msg})
	return dtos.MessageRef{ChatID: chatID, MessageID: f.nextID}, nil
}

func (f *fakeTransport) EditMessage(_ context.Context, ref dtos.MessageRef, msg dtos.OutboundMessage) error {
	if f.beforeSend != nil {
		if err := f.beforeSend(ref.ChatID); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChatID: ref.ChatID, Msg: msg, Edited: true})
	return nil
}

func (f *fakeTransport) DeleteMessage(_ context.Context, ref dtos.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeTransport) AcknowledgeInteraction(_ context.Context, _ string, notice string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks = append(f.acks, notice)
	return nil
}

func (f *fakeTransport) to(chatID int64) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeTransport) last(chatID int64) dtos.OutboundMessage {
	msgs := f.to(chatID)
	if len(msgs) == 0 {
		return dtos.OutboundMessage{}
	}
	return msgs[len(msgs)-1].Msg
}

func (f *fakeTransport) anyTextTo(chatID int64, substr string) bool {
	for _, m := range f.to(chatID) {
		if strings.Contains(m.Msg.Text, substr) {
			return true
		}
	}
	return false
}

func (f *fakeTransport) acked(notice string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.acks {
		if a == notice {
			return true
		}
	}
	return false
}

func buttonCommands(msg dtos.OutboundMessage) []string {
	var out []string
	for _, row := range msg.Buttons {
		for _, b := range row {
			out = append(out, b.Command)
		}
	}
	return out
}

type botFixture struct {
	db        *gorm.DB
	bot       *Bot
	transport *fakeTransport
	members   *services.MemberService
	events    *services.EventService
	ledger    *services.AttendanceLedger
	updateID  int64
}

func newBotFixture(t *testing.T) *botFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&gormModels.Member{}, &gormModels.Event{}, &gormModels.Confirmation{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	memberRepo := repositories.NewMemberRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	confirmationRepo := repositories.NewConfirmationRepository(db)
	stats := repositories.NewAttendanceStatsRepository(sqlx.NewDb(sqlDB, "sqlite3"))

	members := services.NewMemberService(memberRepo)
	ledger := services.NewAttendanceLedger(eventRepo, confirmationRepo, memberRepo, nil)
	directory := services.NewEventDirectory(eventRepo, stats, common.NewCacheService(time.Minute, time.Minute), catalog.Default(), nil, time.UTC)
	directory.SetClock(func() time.Time { return testNow })
	events := services.NewEventService(eventRepo, ledger, directory, time.UTC)

	transport := &fakeTransport{}
	b, err := New(Deps{
		Transport: transport,
		Roles:     auth.NewGate(members, adminID),
		Members:   members,
		Directory: directory,
		Events:    events,
		Ledger:    ledger,
		Signer:    common.NewURLSigner([]byte("test-key"), common.NewCacheService(time.Minute, time.Minute)),
		Now:       func() time.Time { return testNow },
	}, Settings{
		DefaultChannelID: channelID,
		Location:         time.UTC,
		SessionIdle:      time.Minute,
		PublicBaseURL:    "https://agenda.example",
	})
	if err != nil {
		t.Fatalf("Failed to build bot: %v", err)
	}

	return &botFixture{db: db, bot: b, transport: transport, members: members, events: events, ledger: ledger}
}

// press delivers a button press from userID in chatID.
func (f *botFixture) press(userID, chatID int64, payload string) {
	f.updateID++
	kind := dtos.ChatShared
	if chatID == userID {
		kind = dtos.ChatPrivate
	}
	f.bot.HandleInteraction(context.Background(), dtos.Interaction{
		UpdateID:   f.updateID,
		UserID:     userID,
		UserName:   "tester",
		ChatID:     chatID,
		ChatKind:   kind,
		Command:    payload,
		Message:    &dtos.MessageRef{ChatID: chatID, MessageID: 99},
		CallbackID: "cb",
	})
}

// say delivers typed text in the user's private chat.
func (f *botFixture) say(userID int64, text string) {
	f.updateID++
	f.bot.HandleInteraction(context.Background(), dtos.Interaction{
		UpdateID: f.updateID,
		UserID:   userID,
		UserName: "tester",
		ChatID:   userID,
		ChatKind: dtos.ChatPrivate,
		Text:     text,
	})
}

func (f *botFixture) session(userID int64) (*Session, bool) {
	return f.bot.sessions.Get(SessionKey{ChatID: userID, UserID: userID})
}

func (f *botFixture) register(t *testing.T, userID int64, name string, role constants.Role) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.members.Register(ctx, &gormModels.Member{
		UserID: userID, Name: name, Grade: "Mestre", LodgeName: "Acácia", LodgeNumber: "12", Origin: "Recife",
	}); err != nil {
		t.Fatalf("Failed to register member: %v", err)
	}
	if role != constants.RoleMember {
		if err := f.members.SetRole(ctx, userID, role); err != nil {
			t.Fatalf("Failed to set role: %v", err)
		}
	}
}

func (f *botFixture) createEvent(t *testing.T, date, lodge string, policy constants.MealPolicy, secretary int64) *gormModels.Event {
	t.Helper()
	e := &gormModels.Event{
		Date: date, Time: "19:30", LodgeName: lodge, MealPolicy: policy,
		MinGrade: "Aprendiz", ChannelID: channelID, SecretaryID: secretary,
	}
	if err := f.events.Create(context.Background(), e); err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	return e
}
