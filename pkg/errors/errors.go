package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrValidation       = errors.New("validation failed")
	ErrReminderNotFound = errors.New("reminder not found")
	ErrProfileNotFound  = errors.New("owner profile not found")
	ErrInvalidToken     = errors.New("invalid token")
	ErrChannel          = errors.New("notification channel failed")
	ErrStore            = errors.New("store operation failed")
	ErrCache            = errors.New("cache operation failed")
	ErrInvalidDueDate   = errors.New("reminder has no valid due date")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeReminderNotFound = "REMINDER_NOT_FOUND"
	ErrCodeProfileNotFound  = "PROFILE_NOT_FOUND"
	ErrCodeInvalidToken     = "INVALID_TOKEN"
	ErrCodeChannelError     = "CHANNEL_ERROR"
	ErrCodeDatabaseError    = "DATABASE_ERROR"
	ErrCodeCacheError       = "CACHE_ERROR"
	ErrCodeInvalidDueDate   = "INVALID_DUE_DATE"
)

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapReminderNotFound(reminderID string) *BusinessError {
	return NewBusinessError(
		ErrCodeReminderNotFound,
		fmt.Sprintf("Reminder with ID %s not found", reminderID),
		ErrReminderNotFound,
	)
}

func WrapProfileNotFound(ownerID string) *BusinessError {
	return NewBusinessError(
		ErrCodeProfileNotFound,
		fmt.Sprintf("Profile for owner %s not found", ownerID),
		ErrProfileNotFound,
	)
}

func WrapInvalidToken() *BusinessError {
	return NewBusinessError(ErrCodeInvalidToken, "Invalid token", ErrInvalidToken)
}

// WrapChannelError records a single channel failure. Transport failures
// (timeouts, connection errors) are distinguished from a provider rejecting
// the message.
func WrapChannelError(channel, reason string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeChannelError,
		fmt.Sprintf("%s: %s", channel, reason),
		errors.Join(ErrChannel, err),
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		errors.Join(ErrStore, err),
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		errors.Join(ErrCache, err),
	)
}

func WrapInvalidDueDate(reminderID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidDueDate,
		fmt.Sprintf("Reminder %s has a missing or malformed due date", reminderID),
		ErrInvalidDueDate,
	)
}

// HTTPStatus maps an error onto the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrReminderNotFound), errors.Is(err, ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to an end user.
func PublicMessage(err error, fallback string) string {
	var be *BusinessError
	if errors.As(err, &be) && !errors.Is(err, ErrStore) {
		return be.Message
	}
	return fallback
}
