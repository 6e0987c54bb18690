package utils

import (
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const MaxWorkTextLength = 64 * 1024

// IsValidParticipantId checks if the given string is a well formed participant id.
// Assignment ids share the same format.
// Note: it does not check whether the participant exists.
func IsValidParticipantId(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// IsValidProgressRecordId checks if the given string is a well formed progress record id.
func IsValidProgressRecordId(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

// IsBlank reports whether s is empty once surrounding whitespace is removed.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
