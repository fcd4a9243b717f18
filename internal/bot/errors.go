package bot

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied stops a handler before it runs.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrRoutingMiss means no route matched the command.
	ErrRoutingMiss = errors.New("command not recognized")
	// errSessionCorrupt aborts a flow whose session lacks a required field.
	errSessionCorrupt = errors.New("session corrupt")
)

// ValidationError rejects one input; the step is asked again.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errSessionCorrupt, fmt.Sprintf(format, args...))
}
