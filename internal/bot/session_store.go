package bot

import (
	"fmt"
	"maps"
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionKey identifies one conversation: a user in a chat.
type SessionKey struct {
	ChatID int64
	UserID int64
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%d:%d", k.ChatID, k.UserID)
}

// Session is the in-memory state of one running flow.
type Session struct {
	Key       SessionKey
	Flow      string
	State     string
	Fields    map[string]string
	UpdatedAt time.Time
}

// Clone copies the session so a step can work on it without touching the
// stored version until it succeeds.
func (s *Session) Clone() *Session {
	c := *s
	c.Fields = maps.Clone(s.Fields)
	if c.Fields == nil {
		c.Fields = map[string]string{}
	}
	return &c
}

// Field returns a collected value and whether it was set.
func (s *Session) Field(name string) (string, bool) {
	v, ok := s.Fields[name]
	return v, ok
}

// SessionStore keeps sessions in memory and drops them after the idle
// timeout. Restarting the process discards every session.
type SessionStore struct {
	cache *cache.Cache
	idle  time.Duration
}

func NewSessionStore(idle time.Duration) *SessionStore {
	cleanup := idle / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	return &SessionStore{
		cache: cache.New(idle, cleanup),
		idle:  idle,
	}
}

// Get returns a copy of the live session for key.
func (s *SessionStore) Get(key SessionKey) (*Session, bool) {
	v, ok := s.cache.Get(key.String())
	if !ok {
		return nil, false
	}
	return v.(*Session).Clone(), true
}

// Put stores the session and restarts its idle timer.
func (s *SessionStore) Put(session *Session) {
	stored := session.Clone()
	stored.UpdatedAt = time.Now()
	s.cache.Set(stored.Key.String(), stored, s.idle)
}

func (s *SessionStore) Delete(key SessionKey) {
	s.cache.Delete(key.String())
}

// Len counts live sessions, including expired ones not yet swept.
func (s *SessionStore) Len() int {
	return s.cache.ItemCount()
}
