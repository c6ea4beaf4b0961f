package shared

import "errors"

// Error codes shared by every bounded context.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeConflict            = "CONFLICT"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeExhausted           = "EXHAUSTED"
	CodeInvalidState        = "INVALID_STATE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code, so
// errors.Is(err, ErrNotFound) matches every not-found error.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports malformed input on a specific field.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message, Field: field}
}

// NewConflictError reports a rejected operation that clashes with existing state.
func NewConflictError(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: resource + " not found"}
}

// NewAuthorizationError reports an operation attempted without the required identity.
func NewAuthorizationError(message string) *DomainError {
	return &DomainError{Code: CodeUnauthorized, Message: message}
}

// NewExhaustedError reports that a bounded retry loop ran out of attempts.
func NewExhaustedError(message string, cause error) *DomainError {
	return &DomainError{Code: CodeExhausted, Message: message, Err: cause}
}

// NewConcurrencyError reports a stale aggregate version.
func NewConcurrencyError(message string) *DomainError {
	return &DomainError{Code: CodeConcurrencyConflict, Message: message}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation          = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConflict            = NewDomainError(CodeConflict, "Resource conflicts with existing state")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrExhausted           = NewDomainError(CodeExhausted, "Retry attempts exhausted")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// ErrDuplicateKey is the cause attached to conflicts raised by a storage-level
// unique constraint.
var ErrDuplicateKey = errors.New("duplicate key")

// NewDuplicateKeyError reports a conflict raised by a unique constraint.
func NewDuplicateKeyError(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message, Err: ErrDuplicateKey}
}

// IsDuplicateKey reports whether err stems from a unique constraint violation.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// ErrorCode extracts the domain error code from err, or "" if err carries none.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
