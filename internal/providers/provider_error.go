package providers

import "fmt"

// ProviderError is a failed call to an external platform. Details carries
// the platform's own description and is only logged.
type ProviderError struct {
	Code       string
	Message    string
	Details    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
