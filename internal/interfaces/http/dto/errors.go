package dto

import (
	"errors"
	"net/http"

	"github.com/pharmapos/backend/internal/domain/shared"
)

// Codes used only at the HTTP boundary
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// internalMessage replaces the message of every 500 response
const internalMessage = "An unexpected error occurred"

var statusByCode = map[string]int{
	shared.CodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:              http.StatusBadRequest,
	shared.CodeUnauthorized:        http.StatusUnauthorized,
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeConflict:            http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeRequestTooLarge:         http.StatusRequestEntityTooLarge,
}

// HTTPStatus returns the status for an error code. Unknown codes, and
// EXHAUSTED, are server errors.
func HTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorFrom maps err to a status and the error body to send. Errors that
// map to 500 lose their message so internals never leak.
func ErrorFrom(err error) (int, ErrorInfo) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, ErrorInfo{Code: ErrCodeInternal, Message: internalMessage}
	}
	status := HTTPStatus(de.Code)
	if status >= http.StatusInternalServerError {
		return status, ErrorInfo{Code: de.Code, Message: internalMessage}
	}
	return status, ErrorInfo{Code: de.Code, Message: de.Message, Field: de.Field}
}
