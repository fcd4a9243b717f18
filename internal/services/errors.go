package services

import (
	"context"
	"errors"
	"fmt"

	"bode-andarilho/agenda/internal/auth"
	"bode-andarilho/agenda/internal/db/repositories"
)

var (
	// ErrNotFound means an event or member key no longer resolves.
	ErrNotFound = repositories.ErrNotFound
	// ErrEventNotActive means the event was cancelled before the operation.
	ErrEventNotActive = repositories.ErrEventNotActive
	// ErrMealTierNotAllowed means the tier does not fit the event's meal policy.
	ErrMealTierNotAllowed = errors.New("meal tier not allowed for event")
	// ErrNotRegistered means the acting user has no member record.
	ErrNotRegistered = errors.New("member not registered")
)

// StorageError wraps a failed store call. Callers show a generic
// "try again later" notice and keep any conversation state.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// storageErr passes domain sentinels through untouched and wraps the rest.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEventNotActive) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err came from a failed store call.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// actedBy is the acting user for audit log lines, 0 outside an interaction.
func actedBy(ctx context.Context) int64 {
	if actor, ok := auth.ActorFrom(ctx); ok {
		return actor.UserID
	}
	return 0
}
