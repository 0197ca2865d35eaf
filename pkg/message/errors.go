package message

import "fmt"

// HandlingError reports that a message handler failed to process a message.
// It is the single failure kind handlers surface to the dispatching code,
// whatever the underlying cause.
type HandlingError struct {
	// FailedMessage is the message that could not be handled.
	FailedMessage *Message

	// Description explains what the handler was doing.
	Description string

	// Cause is the underlying failure.
	Cause error
}

// NewHandlingError creates a HandlingError.
func NewHandlingError(failed *Message, description string, cause error) *HandlingError {
	return &HandlingError{FailedMessage: failed, Description: description, Cause: cause}
}

func (e *HandlingError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s, failedMessage=%v", e.Description, e.FailedMessage)
	}
	return fmt.Sprintf("%s: %v, failedMessage=%v", e.Description, e.Cause, e.FailedMessage)
}

// Unwrap returns the underlying cause.
func (e *HandlingError) Unwrap() error {
	return e.Cause
}
