package utils

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewEntityId generates a random id for participants and assignments.
func NewEntityId() string {
	return uuid.NewString()
}

// NewProgressRecordId generates a time-ordered id, so progress records list
// in creation order.
func NewProgressRecordId() string {
	return ulid.Make().String()
}
