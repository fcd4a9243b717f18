package common

import (
	"errors"
	"testing"
	"time"
)

func TestURLSigner_SignAndRedeemOnce(t *testing.T) {
	signer := NewURLSigner([]byte("test-secret"), NewCacheService(time.Minute, time.Minute))

	token, err := signer.Sign("event-1", 42, time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	grant, err := signer.Redeem(token)
	if err != nil {
		t.Fatalf("Expected redeem to succeed, got %v", err)
	}
	if grant.EventID != "event-1" || grant.UserID != 42 {
		t.Errorf("Unexpected grant %+v", grant)
	}

	if _, err := signer.Redeem(token); !errors.Is(err, ErrTokenConsumed) {
		t.Errorf("Expected ErrTokenConsumed on second redeem, got %v", err)
	}
}

func TestURLSigner_RejectsForeignKey(t *testing.T) {
	cache := NewCacheService(time.Minute, time.Minute)
	a := NewURLSigner([]byte("secret-a"), cache)
	b := NewURLSigner([]byte("secret-b"), cache)

	token, err := a.Sign("event-1", 1, time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := b.Redeem(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expected ErrTokenInvalid, got %v", err)
	}
}

func TestURLSigner_RejectsExpired(t *testing.T) {
	signer := NewURLSigner([]byte("secret"), NewCacheService(time.Minute, time.Minute))

	token, err := signer.Sign("event-1", 1, -time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := signer.Redeem(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expected expired token to be invalid, got %v", err)
	}
}

func TestCacheService_SetIfAbsent(t *testing.T) {
	c := NewCacheService(time.Minute, time.Minute)
	if !c.SetIfAbsent("k", time.Minute) {
		t.Fatal("Expected first SetIfAbsent to succeed")
	}
	if c.SetIfAbsent("k", time.Minute) {
		t.Error("Expected second SetIfAbsent to fail")
	}
}

func TestCacheService_CopiesValues(t *testing.T) {
	c := NewCacheService(time.Minute, time.Minute)
	value := []byte("abc")
	c.Set("k", value, time.Minute)
	value[0] = 'x'

	got, ok := c.Get("k")
	if !ok || string(got) != "abc" {
		t.Fatalf("Expected stored copy abc, got %q (%v)", got, ok)
	}
	got[1] = 'y'
	again, _ := c.Get("k")
	if string(again) != "abc" {
		t.Errorf("Expected Get to return a copy, got %q", again)
	}

	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Expected key to be gone after Delete")
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d", c.Len())
	}
}
