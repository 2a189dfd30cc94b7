package entities

import (
	"errors"
	"fmt"
)

// Not-found and state errors surfaced by authoring/admin operations.
// The inbound pipeline never propagates these to the end user.
var (
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrEntryNotFound        = errors.New("knowledge entry not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEntryAlreadyActive   = errors.New("knowledge entry is already active")
)

// ValidationError rejects bad authoring input before persistence.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// CompletionErrorKind classifies failures of the text-completion collaborator.
type CompletionErrorKind string

const (
	CompletionAuthInvalid CompletionErrorKind = "auth-invalid"
	CompletionRateLimited CompletionErrorKind = "rate-limited"
	CompletionUpstream    CompletionErrorKind = "upstream-error"
	CompletionOther       CompletionErrorKind = "other"
)

// CompletionError wraps an error from the completion collaborator with
// its classification. The response composer recovers from these with a
// canned fallback; assisted-send operations propagate them.
type CompletionError struct {
	Kind CompletionErrorKind
	Err  error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed (%s): %v", e.Kind, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// CompletionKind extracts the classification from err, or
// CompletionOther when err is not a CompletionError.
func CompletionKind(err error) CompletionErrorKind {
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return CompletionOther
}
