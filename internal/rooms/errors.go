package rooms

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("room not found")
	ErrCredentialRequired  = errors.New("password required")
	ErrInvalidCredential   = errors.New("invalid password")
	ErrSlugTaken           = errors.New("slug already exists")
	ErrAllocationExhausted = errors.New("failed to generate unique slug")
)

// ValidationError reports malformed input on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsAccessDenied reports whether err is one of the credential denials.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrCredentialRequired) || errors.Is(err, ErrInvalidCredential)
}
