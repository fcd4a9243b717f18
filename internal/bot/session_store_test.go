package bot

import (
	"testing"
	"time"
)

func TestSessionStore_GetReturnsCopy(t *testing.T) {
	store := NewSessionStore(time.Minute)
	key := SessionKey{ChatID: 1, UserID: 1}
	store.Put(&Session{Key: key, Flow: "register", State: "name", Fields: map[string]string{"a": "1"}})

	s, ok := store.Get(key)
	if !ok {
		t.Fatal("Expected session")
	}
	s.Fields["a"] = "changed"
	s.State = "other"

	again, _ := store.Get(key)
	if again.Fields["a"] != "1" || again.State != "name" {
		t.Errorf("Expected stored session untouched, got %+v", again)
	}
}

func TestSessionStore_IdleExpiry(t *testing.T) {
	store := NewSessionStore(20 * time.Millisecond)
	key := SessionKey{ChatID: 1, UserID: 2}
	store.Put(&Session{Key: key, Flow: "register", State: "name"})

	time.Sleep(40 * time.Millisecond)

	if _, ok := store.Get(key); ok {
		t.Error("Expected session to expire after idle timeout")
	}
}

func TestSessionStore_KeysAreIndependent(t *testing.T) {
	store := NewSessionStore(time.Minute)
	store.Put(&Session{Key: SessionKey{ChatID: 10, UserID: 1}, Flow: "a"})

	if _, ok := store.Get(SessionKey{ChatID: 1, UserID: 1}); ok {
		t.Error("Expected private chat key not to see the group session")
	}
	if _, ok := store.Get(SessionKey{ChatID: 10, UserID: 2}); ok {
		t.Error("Expected another user not to see the session")
	}
}
