package types

import (
	"errors"
	"net/http"
)

type ErrorCode string

func (e ErrorCode) String() string {
	return string(e)
}

const (
	// 5XX
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
	// 4XX
	ValidationError        ErrorCode = "VALIDATION_ERROR"
	BadRequest             ErrorCode = "BAD_REQUEST"
	IdNotFound             ErrorCode = "ID_NOT_FOUND"
	StakeTooLow            ErrorCode = "STAKE_TOO_LOW"
	NotStaked              ErrorCode = "NOT_STAKED"
	NoSupervisorAvailable  ErrorCode = "NO_SUPERVISOR_AVAILABLE"
	NotAuthorized          ErrorCode = "NOT_AUTHORIZED"
	NoActiveSupervision    ErrorCode = "NO_ACTIVE_SUPERVISION"
	TimerNotFound          ErrorCode = "TIMER_NOT_FOUND"
	AssignmentNotFound     ErrorCode = "ASSIGNMENT_NOT_FOUND"
	ProgressRecordNotFound ErrorCode = "PROGRESS_RECORD_NOT_FOUND"
	WorkNotUploaded        ErrorCode = "WORK_NOT_UPLOADED"
	AssignmentForfeited    ErrorCode = "ASSIGNMENT_FORFEITED"
)

// Error represents an error with an HTTP status code and an application-specific error code.
type Error struct {
	Err        error
	StatusCode int
	ErrorCode  ErrorCode
}

const UninitializedStatusCode = 0

func (e *Error) Error() string {
	return e.Err.Error()
}

// NewError creates a new Error with the provided status code, error code, and underlying error.
// If the status code is not provided (0), it defaults to http.StatusInternalServerError(500).
// If the error code is empty, it defaults to INTERNAL_SERVICE_ERROR.
func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	if statusCode == UninitializedStatusCode {
		statusCode = http.StatusInternalServerError
	}
	if errorCode == "" {
		errorCode = InternalServiceError
	}
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Err:        err,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, errors.New(msg))
}

func NewInternalServiceError(err error) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  InternalServiceError,
		Err:        err,
	}
}
