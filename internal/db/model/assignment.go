package model

import "github.com/sameicp/assignment-monitor/internal/types"

const (
	AssignmentCollection           = "assignments"
	ProgressRecordCollection       = "progress_records"
	UploadedWorkCollection         = "uploaded_work"
	SupervisorAssignmentCollection = "supervisor_assignments"
)

type AssignmentDocument struct {
	Id               string `bson:"_id"` // Primary key
	Topic            string `bson:"topic"`
	DueDateDays      int64  `bson:"due_date_days"`
	ProgressRecordId string `bson:"progress_record_id"`
	CreatedAt        int64  `bson:"created_at"`
}

// ProgressRecordDocument binds one student, one supervisor and one assignment.
// Its id, together with the student id, is what authorizes a fund claim.
type ProgressRecordDocument struct {
	Id           string              `bson:"_id"` // Primary key
	StudentId    string              `bson:"student_id"`
	SupervisorId string              `bson:"supervisor_id"`
	AssignmentId string              `bson:"assignment_id"`
	IsFinished   bool                `bson:"is_finished"`
	State        types.ProgressState `bson:"state"`
	CreatedAt    int64               `bson:"created_at"`
}

func NewProgressRecordDocument(id, studentId, supervisorId, assignmentId string, createdAt int64) *ProgressRecordDocument {
	return &ProgressRecordDocument{
		Id:           id,
		StudentId:    studentId,
		SupervisorId: supervisorId,
		AssignmentId: assignmentId,
		IsFinished:   false,
		State:        types.Pending,
		CreatedAt:    createdAt,
	}
}

type UploadedWorkDocument struct {
	AssignmentId string `bson:"_id"`
	Work         string `bson:"work"`
	UploadedAt   int64  `bson:"uploaded_at"`
}

// SupervisorAssignmentDocument points at the most recent progress record under
// a supervisor's watch. A new assignment overwrites the previous pointer.
type SupervisorAssignmentDocument struct {
	SupervisorId     string `bson:"_id"`
	ProgressRecordId string `bson:"progress_record_id"`
}
