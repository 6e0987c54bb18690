package db

import (
	"errors"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

// DuplicateKeyError is an error type for duplicate key errors
type DuplicateKeyError struct {
	Key     string
	Message string
}

func (e *DuplicateKeyError) Error() string {
	return e.Message
}

func IsDuplicateKeyError(err error) bool {
	var target *DuplicateKeyError
	return errors.As(err, &target)
}

// Not found Error
type NotFoundError struct {
	Key     string
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// Error code references: https://www.mongodb.com/docs/manual/reference/error-codes/
func IsWriteConflictError(err error) bool {
	return hasCommandErrorCode(err, 112)
}

func IsTransactionAbortedError(err error) bool {
	return hasCommandErrorCode(err, 251)
}

func hasCommandErrorCode(err error, code int32) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		log.Debug().Int32("code", cmdErr.Code).Msg("checking mongo command error code")
		return cmdErr.Code == code
	}
	return false
}

// toDuplicateKeyError converts a mongo duplicate key write error into the
// custom error type so that we can return 4xx errors to client
func toDuplicateKeyError(err error, key, message string) error {
	if mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{
			Key:     key,
			Message: message,
		}
	}
	return err
}
