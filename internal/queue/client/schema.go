package client

const (
	ExpiredAssignmentQueueName string = "expired_assignment_queue"
)

const (
	ExpiredAssignmentEventType EventType = 1
)

type EventType int

// ExpiredAssignmentEvent is emitted when the due-date timer of an assignment
// fires. Consumers must tolerate duplicates.
type ExpiredAssignmentEvent struct {
	EventType        EventType `json:"event_type"` // always 1
	AssignmentId     string    `json:"assignment_id"`
	ProgressRecordId string    `json:"progress_record_id"`
	ParticipantId    string    `json:"participant_id"`
}

func NewExpiredAssignmentEvent(assignmentId, progressRecordId, participantId string) ExpiredAssignmentEvent {
	return ExpiredAssignmentEvent{
		EventType:        ExpiredAssignmentEventType,
		AssignmentId:     assignmentId,
		ProgressRecordId: progressRecordId,
		ParticipantId:    participantId,
	}
}
