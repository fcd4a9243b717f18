package repositories

import "errors"

var (
	// ErrNotFound is returned when a lookup by key matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrEventNotActive is returned when cancelling an event that is not active.
	ErrEventNotActive = errors.New("event is not active")
	// ErrFieldNotEditable guards UpdateField against arbitrary columns.
	ErrFieldNotEditable = errors.New("field is not editable")
)
