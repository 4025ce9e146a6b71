package apperr

import (
	"errors"
	"net/http"
)

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

const (
	CodeInvalidCredentials          = "INVALID_CREDENTIALS"
	CodeValidation                  = "VALIDATION_ERROR"
	CodeUnauthorized                = "UNAUTHORIZED"
	CodeForbidden                   = "FORBIDDEN"
	CodeAdminProfileReadOnly        = "ADMIN_PROFILE_READ_ONLY"
	CodeSignupDisabled              = "SIGNUP_DISABLED"
	CodeNotFound                    = "NOT_FOUND"
	CodeEmailAlreadyInUse           = "EMAIL_ALREADY_IN_USE"
	CodeInvalidStatusTransition     = "INVALID_STATUS_TRANSITION"
	CodeCarHasScheduledAppointments = "CAR_HAS_SCHEDULED_APPOINTMENTS"
	CodeIdempotencyKeyReuse         = "IDEMPOTENCY_KEY_REUSE"
	CodeTooManyLoginAttempts        = "TOO_MANY_LOGIN_ATTEMPTS"
	CodeInternal                    = "INTERNAL"
)

// Validation builds a 422 with per-field details.
func Validation(message string, details map[string]any) *Error {
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Code: CodeForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Status: http.StatusConflict, Code: code, Message: message}
}

// As unwraps err to an *Error.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

// HasCode reports whether err is an *Error carrying code.
func HasCode(err error, code string) bool {
	ae, ok := As(err)
	return ok && ae.Code == code
}
