package domain

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches by error kind, so a sentinel wrapped via WithError still
// compares equal to the sentinel under errors.Is.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if !errors.As(target, &appErr) {
		return false
	}
	return e.Code == appErr.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrInvalidEvent = &AppError{
		Code:       "INVALID_EVENT",
		Message:    "Event failed validation",
		StatusCode: 422,
	}

	ErrDuplicateEvent = &AppError{
		Code:       "DUPLICATE_EVENT",
		Message:    "An event with this id was already ingested",
		StatusCode: 409,
	}

	ErrDeviceNotFound = &AppError{
		Code:       "DEVICE_NOT_FOUND",
		Message:    "No device registered at this location",
		StatusCode: 404,
	}

	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "Access user not found",
		StatusCode: 404,
	}

	ErrSettingNotFound = &AppError{
		Code:       "SETTING_NOT_FOUND",
		Message:    "Configuration setting not found",
		StatusCode: 404,
	}

	ErrInvalidParameters = &AppError{
		Code:       "INVALID_PARAMETERS",
		Message:    "Alert parameters out of range",
		StatusCode: 422,
	}

	ErrPersistence = &AppError{
		Code:       "PERSISTENCE_FAILED",
		Message:    "Could not durably record the event",
		StatusCode: 500,
	}

	ErrNotifyFailed = &AppError{
		Code:       "NOTIFY_FAILED",
		Message:    "Failed to publish notification",
		StatusCode: 502,
	}
)
