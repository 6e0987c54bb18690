package model

import "github.com/sameicp/assignment-monitor/internal/types"

const TimerCollection = "timers"

// TimerDocument records the due-date forfeiture job armed for an assignment.
type TimerDocument struct {
	AssignmentId     string           `bson:"_id"`
	Handle           string           `bson:"handle"`
	ProgressRecordId string           `bson:"progress_record_id"`
	ParticipantId    string           `bson:"participant_id"`
	FireAt           int64            `bson:"fire_at"` // unix seconds
	State            types.TimerState `bson:"state"`
}

func NewTimerDocument(assignmentId, handle, progressRecordId, participantId string, fireAt int64) *TimerDocument {
	return &TimerDocument{
		AssignmentId:     assignmentId,
		Handle:           handle,
		ProgressRecordId: progressRecordId,
		ParticipantId:    participantId,
		FireAt:           fireAt,
		State:            types.TimerArmed,
	}
}
