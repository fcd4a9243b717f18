package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
)

func TestRouter_PrivilegedRoutesNeverReachHandlers(t *testing.T) {
	f := newBotFixture(t)
	f.register(t, 5, "Pedro", constants.RoleMember)
	f.register(t, 6, "Paulo", constants.RoleSecretary)

	called := map[string]bool{}
	var privileged []Route
	for _, r := range f.bot.routeList() {
		if r.Role == constants.RoleMember {
			continue
		}
		pattern := r.Pattern
		r.Handler = func(context.Context, *Turn) error {
			called[pattern] = true
			return nil
		}
		privileged = append(privileged, r)
	}
	if len(privileged) == 0 {
		t.Fatal("Expected privileged routes")
	}
	rt, err := compileRoutes(privileged)
	if err != nil {
		t.Fatalf("Failed to compile routes: %v", err)
	}
	f.bot.routes = rt

	for _, r := range privileged {
		payload := strings.Replace(r.Pattern, argSeparator+"*", argSeparator+"x", 1)
		f.press(5, 5, payload)
		if called[r.Pattern] {
			t.Errorf("Member reached handler of %s", r.Pattern)
		}
		if r.Role == constants.RoleAdmin {
			f.press(6, 6, payload)
			if called[r.Pattern] {
				t.Errorf("Secretary reached handler of %s", r.Pattern)
			}
		}
	}
	if !f.transport.acked(constants.MsgPermissionDenied) {
		t.Error("Expected permission denied notice")
	}
}

func TestRouter_Unrecognized(t *testing.T) {
	f := newBotFixture(t)

	for _, payload := range []string{"bogus", "show_event|%zz", "list_events_extra"} {
		f.transport.acks = nil
		f.press(5, 5, payload)
		if !f.transport.acked(constants.MsgUnrecognized) {
			t.Errorf("Expected %q to be unrecognized", payload)
		}
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	f := newBotFixture(t)
	rt, err := compileRoutes([]Route{{
		Pattern: constants.VerbMainMenu,
		Handler: func(context.Context, *Turn) error { panic("boom") },
	}})
	if err != nil {
		t.Fatalf("Failed to compile routes: %v", err)
	}
	f.bot.routes = rt

	f.press(5, 5, constants.VerbMainMenu)
	if !f.transport.anyTextTo(5, constants.MsgGenericError) {
		t.Error("Expected generic error after panic")
	}
	if !f.transport.acked("") {
		t.Error("Expected the press to be acknowledged")
	}
}

func TestRouter_PrefixRoutesLongestFirst(t *testing.T) {
	var hit string
	handler := func(name string) HandlerFunc {
		return func(context.Context, *Turn) error { hit = name; return nil }
	}
	rt, err := compileRoutes([]Route{
		{Pattern: "cancel|*", Handler: handler("short")},
		{Pattern: "cancel|event|*", Handler: handler("long")},
		{Pattern: "cancel", Handler: handler("exact")},
	})
	if err != nil {
		t.Fatalf("Failed to compile routes: %v", err)
	}

	cases := map[string]string{
		"cancel":         "exact",
		"cancel|x":       "short",
		"cancel|event|x": "long",
	}
	for raw, want := range cases {
		r, ok := rt.match(raw)
		if !ok {
			t.Fatalf("Expected %q to match", raw)
		}
		_ = r.Handler(context.Background(), nil)
		if hit != want {
			t.Errorf("Expected %q to hit %s, got %s", raw, want, hit)
		}
	}
	if _, ok := rt.match("cancelx"); ok {
		t.Error("Expected no match without separator")
	}
}

func TestRouter_DuplicatePatternRejected(t *testing.T) {
	h := func(context.Context, *Turn) error { return nil }
	if _, err := compileRoutes([]Route{{Pattern: "a", Handler: h}, {Pattern: "a", Handler: h}}); err == nil {
		t.Error("Expected duplicate pattern to be rejected")
	}
}

func TestRouter_FreeText(t *testing.T) {
	f := newBotFixture(t)

	f.say(5, "olá")
	if f.transport.last(5).Text != constants.MsgTextWithoutFlow {
		t.Errorf("Expected text without flow notice, got %q", f.transport.last(5).Text)
	}

	f.bot.HandleInteraction(context.Background(), dtos.Interaction{
		UpdateID: 1, UserID: 5, ChatID: channelID, ChatKind: dtos.ChatShared, Text: "bom dia",
	})
	if got := f.transport.to(channelID); len(got) != 0 {
		t.Errorf("Expected group chatter to be ignored, got %d messages", len(got))
	}
}

func TestRouter_StartInGroup(t *testing.T) {
	f := newBotFixture(t)
	f.bot.HandleInteraction(context.Background(), dtos.Interaction{
		UpdateID: 1, UserID: 5, ChatID: channelID, ChatKind: dtos.ChatShared, Text: "/start@bode_bot",
	})
	if f.transport.last(channelID).Text != constants.MsgGroupOnly {
		t.Errorf("Expected group-only notice, got %q", f.transport.last(channelID).Text)
	}
}

func TestRouter_PrivateRouteRedirectsFromGroup(t *testing.T) {
	f := newBotFixture(t)
	f.register(t, 5, "Pedro", constants.RoleMember)

	f.press(5, channelID, constants.VerbMyProfile)

	if !f.transport.acked(constants.MsgCheckPrivate) {
		t.Error("Expected redirect notice")
	}
	if got := f.transport.to(channelID); len(got) != 0 {
		t.Errorf("Expected profile kept out of the channel, got %d messages", len(got))
	}
	if !f.transport.anyTextTo(5, "Pedro") {
		t.Error("Expected profile in the private chat")
	}
}

func TestEngine_RejectsSecondFlow(t *testing.T) {
	f := newBotFixture(t)
	const user int64 = 8

	f.press(user, user, constants.VerbRegister)
	f.press(user, user, constants.VerbEditProfile)

	if !f.transport.anyTextTo(user, constants.MsgFlowBusy) {
		t.Error("Expected busy notice")
	}
	s, ok := f.session(user)
	if !ok || s.Flow != flowRegistration || s.State != "name" {
		t.Errorf("Expected registration untouched, got %+v", s)
	}
}

func TestEngine_CancelFlow(t *testing.T) {
	f := newBotFixture(t)
	const user int64 = 8

	f.say(user, "/cancelar")
	if !f.transport.anyTextTo(user, constants.MsgNothingToCancelFlow) {
		t.Error("Expected nothing-to-cancel notice")
	}

	f.press(user, user, constants.VerbRegister)
	f.say(user, "/cancelar")
	if _, ok := f.session(user); ok {
		t.Error("Expected session removed")
	}
	if !f.transport.anyTextTo(user, constants.MsgFlowCancelled) {
		t.Error("Expected cancellation notice")
	}
}

func TestEngine_CorruptSessionAborts(t *testing.T) {
	f := newBotFixture(t)
	const user int64 = 8
	f.bot.sessions.Put(&Session{
		Key:    SessionKey{ChatID: user, UserID: user},
		Flow:   flowRegistration,
		State:  "summary",
		Fields: map[string]string{"name": "Fulano"},
	})

	f.press(user, user, EncodeCommand(constants.VerbChoose, "confirm"))

	if !f.transport.anyTextTo(user, constants.MsgFlowAborted) {
		t.Error("Expected aborted notice")
	}
	if _, ok := f.session(user); ok {
		t.Error("Expected session discarded")
	}
	var count int64
	f.db.Model(&gormModels.Member{}).Where("user_id = ?", user).Count(&count)
	if count != 0 {
		t.Error("Expected no member written")
	}
}

func TestEngine_StorageFailureKeepsSession(t *testing.T) {
	f := newBotFixture(t)

	// the administrator's role needs no store lookup
	f.press(adminID, adminID, constants.VerbRegister)
	f.say(adminID, "joão da silva")
	f.say(adminID, "01/02/1970")
	f.press(adminID, adminID, EncodeCommand(constants.VerbChoose, "Mestre"))
	f.say(adminID, "luz")
	f.say(adminID, "12")
	f.say(adminID, "recife")
	f.say(adminID, "GOB")

	before, ok := f.session(adminID)
	if !ok || before.State != "summary" {
		t.Fatalf("Expected summary state, got %+v", before)
	}

	sqlDB, _ := f.db.DB()
	sqlDB.Close()

	f.press(adminID, adminID, EncodeCommand(constants.VerbChoose, "confirm"))

	if !f.transport.anyTextTo(adminID, constants.MsgGenericError) {
		t.Error("Expected generic error notice")
	}
	after, ok := f.session(adminID)
	if !ok || after.State != "summary" || after.Fields["name"] != "João da Silva" {
		t.Errorf("Expected session preserved, got %+v", after)
	}
}

func TestEngine_TextOnButtonStep(t *testing.T) {
	f := newBotFixture(t)
	const user int64 = 8
	f.bot.sessions.Put(&Session{
		Key:    SessionKey{ChatID: user, UserID: user},
		Flow:   flowPromote,
		State:  "confirm",
		Fields: map[string]string{fieldTarget: "8"},
	})
	f.register(t, user, "Tiago", constants.RoleMember)

	f.say(user, "sim")
	if !f.transport.anyTextTo(user, constants.MsgChooseOption) {
		t.Error("Expected choose-an-option notice for typed text")
	}
}

func TestStaleFlowButton(t *testing.T) {
	f := newBotFixture(t)
	f.press(5, 5, EncodeCommand(constants.VerbChoose, "Mestre"))
	if !f.transport.acked(constants.MsgSessionExpired) {
		t.Error("Expected session expired notice")
	}
}

func failChat(chatID int64) func(int64) error {
	return func(id int64) error {
		if id == chatID {
			return errors.New("telegram unavailable")
		}
		return nil
	}
}

func TestEngine_FailedReplyAfterCreateEndsFlow(t *testing.T) {
	f := newBotFixture(t)

	f.press(adminID, adminID, constants.VerbCreateEvent)
	f.say(adminID, "25/03/2026")
	f.say(adminID, "19:30")
	f.say(adminID, "saint lodge")
	f.say(adminID, "12")
	f.say(adminID, "recife")
	f.press(adminID, adminID, EncodeCommand(constants.VerbChoose, "Aprendiz"))
	f.press(adminID, adminID, EncodeCommand(constants.VerbChoose, "Ordinária"))
	f.press(adminID, adminID, EncodeCommand(constants.VerbChoose, "REAA"))
	f.say(adminID, "GOB")
	f.press(adminID, adminID, EncodeCommand(constants.VerbChoose, "Balandrau"))
	f.press(adminID, adminID, EncodeCommand(constants.VerbChoose, "without"))
	f.press(adminID, adminID, EncodeCommand(constants.VerbChoose, skipValue))
	f.say(adminID, "Rua das Flores, 10")

	if s, ok := f.session(adminID); !ok || s.State != "review" {
		t.Fatalf("Expected review state, got %+v", s)
	}

	f.transport.beforeSend = failChat(adminID)
	f.press(adminID, adminID, EncodeCommand(constants.VerbChoose, "confirm"))
	f.transport.beforeSend = nil

	if s, ok := f.session(adminID); ok {
		t.Fatalf("Expected session gone after the event was stored, got state %s", s.State)
	}

	f.press(adminID, adminID, EncodeCommand(constants.VerbChoose, "confirm"))

	var count int64
	f.db.Model(&gormModels.Event{}).Where("event_key = ?", "25/03/2026 — Saint Lodge").Count(&count)
	if count != 1 {
		t.Errorf("Expected one event, got %d", count)
	}
	if got := len(f.transport.to(channelID)); got != 1 {
		t.Errorf("Expected one announcement, got %d", got)
	}
	if !f.transport.acked(constants.MsgSessionExpired) {
		t.Error("Expected the repeated press to find no session")
	}
}

func TestEngine_FailedReplyAfterEditEndsFlow(t *testing.T) {
	f := newBotFixture(t)
	e := f.createEvent(t, "25/03/2026", "Acácia", constants.MealPolicyNone, adminID)

	f.press(adminID, adminID, EncodeCommand(constants.VerbEditEvent, e.Key))
	f.press(adminID, adminID, EncodeCommand(constants.VerbEditEventField, "time"))

	f.transport.beforeSend = failChat(adminID)
	f.say(adminID, "20:00")
	f.transport.beforeSend = nil

	if _, ok := f.session(adminID); ok {
		t.Fatal("Expected session gone after the change was stored")
	}

	f.say(adminID, "21:00")

	var stored gormModels.Event
	if err := f.db.Where("id = ?", e.ID).First(&stored).Error; err != nil {
		t.Fatalf("Failed to load event: %v", err)
	}
	if stored.Time != "20:00" {
		t.Errorf("Expected time 20:00, got %s", stored.Time)
	}
	if got := len(f.transport.to(channelID)); got != 1 {
		t.Errorf("Expected one change notice, got %d", got)
	}
}

func TestEngine_TextStepIgnoresStaleChoice(t *testing.T) {
	f := newBotFixture(t)
	const user int64 = 8

	f.press(user, user, constants.VerbRegister)
	f.say(user, "joão da silva")
	f.say(user, "01/02/1970")
	f.press(user, user, EncodeCommand(constants.VerbChoose, "Mestre"))

	f.press(user, user, EncodeCommand(constants.VerbChoose, "Mestre"))

	s, ok := f.session(user)
	if !ok || s.State != "lodge_name" {
		t.Fatalf("Expected lodge_name state, got %+v", s)
	}
	if _, set := s.Fields["lodge_name"]; set {
		t.Errorf("Expected lodge name unset, got %q", s.Fields["lodge_name"])
	}

	f.say(user, "luz")
	s, _ = f.session(user)
	if s == nil || s.State != "lodge_number" || s.Fields["lodge_name"] != "Luz" {
		t.Errorf("Expected typed lodge name accepted, got %+v", s)
	}
}

func TestEngine_ChoiceOutsideOfferedValuesIgnored(t *testing.T) {
	f := newBotFixture(t)
	const user int64 = 8

	f.press(user, user, constants.VerbRegister)
	f.say(user, "joão da silva")
	f.say(user, "01/02/1970")

	f.press(user, user, EncodeCommand(constants.VerbChoose, "confirm"))

	s, ok := f.session(user)
	if !ok || s.State != "grade" {
		t.Errorf("Expected grade state kept, got %+v", s)
	}
}

func TestHandleInteraction_SerializesPerSessionKey(t *testing.T) {
	f := newBotFixture(t)
	f.register(t, 5, "Pedro", constants.RoleMember)
	f.register(t, 6, "Paulo", constants.RoleMember)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex
	sends := map[int64]int{}
	f.transport.beforeSend = func(chatID int64) error {
		mu.Lock()
		sends[chatID]++
		mu.Unlock()
		if chatID == 5 {
			first := false
			once.Do(func() { first = true })
			if first {
				close(entered)
				<-release
			}
		}
		return nil
	}
	sent := func(chatID int64) int {
		mu.Lock()
		defer mu.Unlock()
		return sends[chatID]
	}

	menu := func(id, update int64) dtos.Interaction {
		return dtos.Interaction{
			UpdateID: update, UserID: id, ChatID: id, ChatKind: dtos.ChatPrivate,
			Command: constants.VerbMainMenu, CallbackID: "cb",
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		f.bot.HandleInteraction(context.Background(), menu(5, 1))
	}()
	<-entered
	go func() {
		defer wg.Done()
		f.bot.HandleInteraction(context.Background(), menu(5, 2))
	}()

	other := make(chan struct{})
	go func() {
		f.bot.HandleInteraction(context.Background(), menu(6, 3))
		close(other)
	}()
	select {
	case <-other:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected another user's interaction to finish while the first is blocked")
	}

	time.Sleep(50 * time.Millisecond)
	if got := sent(5); got != 1 {
		t.Errorf("Expected the second interaction to wait for the first, saw %d sends", got)
	}

	close(release)
	wg.Wait()
	if got := sent(5); got < 2 {
		t.Errorf("Expected both interactions answered, saw %d sends", got)
	}
}
