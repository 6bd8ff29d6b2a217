package sizing

import "fmt"

// InputError reports a missing, mistyped, or out-of-range request field.
// Handlers map it to HTTP 400.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// NewInputError builds an InputError for the named field.
func NewInputError(field, reason string) *InputError {
	return &InputError{Field: field, Reason: reason}
}

// DomainError reports a mathematically undefined operation on otherwise
// well-formed input, such as zero per-unit risk or zero ATR. Handlers map it
// to HTTP 422.
type DomainError struct {
	Reason string
}

func (e *DomainError) Error() string {
	return e.Reason
}

// NewDomainError builds a DomainError with the given reason.
func NewDomainError(reason string) *DomainError {
	return &DomainError{Reason: reason}
}
