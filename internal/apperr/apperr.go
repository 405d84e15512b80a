package apperr

import (
	"errors"
	"net/http"
)

// Error is an operational error that maps directly onto an HTTP response.
type Error struct {
	Status  int    `json:"-"`       // HTTP status code
	Code    string `json:"code"`    // Stable machine-readable code
	Message string `json:"message"` // Human-readable message
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Validation reports malformed or missing input (400)
func Validation(field string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: "invalid value for " + field}
}

// Invalid reports a broken domain rule with its own message (400)
func Invalid(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: message}
}

// Unauthorized reports a missing or invalid credential (401)
func Unauthorized() *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "authentication required"}
}

// Forbidden reports a valid credential acting on someone else's resource (403)
func Forbidden(resource string) *Error {
	return &Error{Status: http.StatusForbidden, Code: "PERMISSION_DENIED", Message: "no permission for " + resource}
}

// NotFound reports a missing resource (404)
func NotFound(resource string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: resource + " not found"}
}

// Duplicate reports a name collision within the owner's scope (409)
func Duplicate(resource string) *Error {
	return &Error{Status: http.StatusConflict, Code: "DUPLICATE", Message: resource + " already exists"}
}

// Internal reports a store failure or unexpected state (500)
func Internal(message string) *Error {
	if message == "" {
		message = "internal server error"
	}
	return &Error{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: message}
}

// From converts any error into an *Error, wrapping unknown errors as Internal
// so nothing leaks to the client as a raw failure.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("")
}
