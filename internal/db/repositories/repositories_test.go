package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"bode-andarilho/agenda/internal/constants"
	gormModels "bode-andarilho/agenda/internal/models/gorm"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// one connection, one in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&gormModels.Member{}, &gormModels.Event{}, &gormModels.Confirmation{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func seedEvent(t *testing.T, repo *EventRepository, date, lodge string, day time.Time) *gormModels.Event {
	t.Helper()
	e := &gormModels.Event{
		Date:       date,
		EventDate:  day,
		LodgeName:  lodge,
		Time:       "19:30",
		MealPolicy: constants.MealPolicyFree,
		ChannelID:  -100,
	}
	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	return e
}

func TestMemberRepository_CreateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &gormModels.Member{UserID: 7, Name: "João"})
	if err != nil || !created {
		t.Fatalf("Expected first create to insert, got created=%v err=%v", created, err)
	}

	created, err = repo.Create(ctx, &gormModels.Member{UserID: 7, Name: "Outro"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if created {
		t.Error("Expected second create to be a no-op")
	}

	m, err := repo.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Expected member, got %v", err)
	}
	if m.Name != "João" {
		t.Errorf("Expected original name kept, got %s", m.Name)
	}
	if m.Role != constants.RoleMember {
		t.Errorf("Expected default role member, got %s", m.Role)
	}
}

func TestMemberRepository_UpdateFieldAndRole(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	repo.Create(ctx, &gormModels.Member{UserID: 1, Name: "A", Grade: "Aprendiz"})

	if err := repo.UpdateField(ctx, 1, "grade", "Mestre"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := repo.UpdateField(ctx, 1, "role", "admin"); !errors.Is(err, ErrFieldNotEditable) {
		t.Errorf("Expected ErrFieldNotEditable for role, got %v", err)
	}
	if err := repo.UpdateField(ctx, 99, "grade", "Mestre"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := repo.SetRole(ctx, 1, constants.RoleSecretary); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	m, _ := repo.Get(ctx, 1)
	if m.Grade != "Mestre" || m.Role != constants.RoleSecretary {
		t.Errorf("Unexpected member after updates: %+v", m)
	}

	secretaries, err := repo.ListByRole(ctx, constants.RoleSecretary)
	if err != nil || len(secretaries) != 1 {
		t.Errorf("Expected one secretary, got %d (%v)", len(secretaries), err)
	}
}

func TestEventRepository_FindByKeyPrefersActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()
	day := time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)

	first := seedEvent(t, repo, "25/12/2026", "Saint Lodge", day)
	if _, err := repo.MarkCancelled(ctx, first.ID); err != nil {
		t.Fatalf("Expected cancel to succeed, got %v", err)
	}
	second := seedEvent(t, repo, "25/12/2026", "Saint Lodge", day)

	events, err := repo.FindByKey(ctx, "25/12/2026 — Saint Lodge")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].ID != second.ID {
		t.Errorf("Expected active event first")
	}
}

func TestEventRepository_MarkCancelledRemovesConfirmations(t *testing.T) {
	db := setupTestDB(t)
	events := NewEventRepository(db)
	confirmations := NewConfirmationRepository(db)
	ctx := context.Background()

	e := seedEvent(t, events, "10/10/2026", "River Lodge", time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC))
	for uid := int64(1); uid <= 3; uid++ {
		ok, err := confirmations.Insert(ctx, &gormModels.Confirmation{EventID: e.ID, UserID: uid, MealTier: constants.MealTierNone})
		if err != nil || !ok {
			t.Fatalf("Failed to insert confirmation: %v", err)
		}
	}

	removed, err := events.MarkCancelled(ctx, e.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected 3 confirmations removed, got %d", removed)
	}

	left, _ := confirmations.ListByEvent(ctx, e.ID)
	if len(left) != 0 {
		t.Errorf("Expected no confirmations left, got %d", len(left))
	}

	if _, err := events.MarkCancelled(ctx, e.ID); !errors.Is(err, ErrEventNotActive) {
		t.Errorf("Expected ErrEventNotActive on second cancel, got %v", err)
	}

	stored, _ := events.GetByID(ctx, e.ID)
	if stored.Status != constants.EventStatusCancelled {
		t.Errorf("Expected cancelled status, got %s", stored.Status)
	}
}

func TestConfirmationRepository_InsertOncePerKey(t *testing.T) {
	db := setupTestDB(t)
	events := NewEventRepository(db)
	repo := NewConfirmationRepository(db)
	ctx := context.Background()

	e := seedEvent(t, events, "25/03/2026", "Luz", time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC))

	ok, err := repo.Insert(ctx, &gormModels.Confirmation{EventID: e.ID, UserID: 5, MealTier: constants.MealTierFree})
	if err != nil || !ok {
		t.Fatalf("Expected insert, got ok=%v err=%v", ok, err)
	}
	ok, err = repo.Insert(ctx, &gormModels.Confirmation{EventID: e.ID, UserID: 5, MealTier: constants.MealTierNone})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ok {
		t.Error("Expected duplicate insert to write nothing")
	}

	deleted, err := repo.Delete(ctx, e.ID, 5)
	if err != nil || !deleted {
		t.Errorf("Expected delete, got deleted=%v err=%v", deleted, err)
	}
	deleted, _ = repo.Delete(ctx, e.ID, 5)
	if deleted {
		t.Error("Expected second delete to report nothing")
	}
}

func TestAttendanceStatsRepository_Headcount(t *testing.T) {
	db := setupTestDB(t)
	events := NewEventRepository(db)
	confirmations := NewConfirmationRepository(db)
	ctx := context.Background()

	e := seedEvent(t, events, "25/03/2026", "Luz", time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC))
	other := seedEvent(t, events, "26/03/2026", "Sol", time.Date(2026, 3, 26, 0, 0, 0, 0, time.UTC))

	confirmations.Insert(ctx, &gormModels.Confirmation{EventID: e.ID, UserID: 1, MealTier: constants.MealTierFree})
	confirmations.Insert(ctx, &gormModels.Confirmation{EventID: e.ID, UserID: 2, MealTier: constants.MealTierFree})
	confirmations.Insert(ctx, &gormModels.Confirmation{EventID: e.ID, UserID: 3, MealTier: constants.MealTierNone})
	confirmations.Insert(ctx, &gormModels.Confirmation{EventID: other.ID, UserID: 1, MealTier: constants.MealTierNone})

	sqlDB, _ := db.DB()
	stats := NewAttendanceStatsRepository(sqlx.NewDb(sqlDB, "sqlite3"))

	hc, err := stats.Headcount(ctx, e.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if hc.Total != 3 || hc.WithMeal != 2 || hc.NoMeal != 1 {
		t.Errorf("Unexpected headcount %+v", hc)
	}

	all, err := stats.HeadcountsByEvent(ctx, []string{e.ID, other.ID, "missing"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if all[e.ID].Total != 3 || all[other.ID].Total != 1 {
		t.Errorf("Unexpected headcounts %+v", all)
	}
	if _, ok := all["missing"]; ok {
		t.Error("Expected no entry for an event without confirmations")
	}
}
