package handlers

import (
	"net/http"

	"github.com/sameicp/assignment-monitor/internal/types"
)

type UploadAssignmentRequestPayload struct {
	StudentId   string `json:"student_id"`
	Topic       string `json:"topic"`
	DueDateDays int64  `json:"due_date_days"`
}

type UploadSolutionRequestPayload struct {
	AssignmentId string `json:"assignment_id"`
	Work         string `json:"work"`
}

// UploadAssignment godoc
// @Summary Upload an assignment
// @Description Matches the student's assignment with a random staked supervisor and starts the due-date countdown.
// @Description If the work is not verified before the due date, the student's stake is forfeited.
// @Accept json
// @Produce json
// @Param payload body UploadAssignmentRequestPayload true "Assignment details"
// @Success 200 {object} PublicResponse[services.CreatedAssignmentPublic] "Created assignment and progress record ids"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Failure 404 {object} types.Error "Error: Student not found"
// @Failure 403 {object} types.Error "Error: Student has not staked"
// @Failure 409 {object} types.Error "Error: No supervisor available"
// @Router /v1/assignments [post]
func (h *Handler) UploadAssignment(request *http.Request) (*Result, *types.Error) {
	payload, err := parseRequestPayload[UploadAssignmentRequestPayload](request)
	if err != nil {
		return nil, err
	}
	if err := validateParticipantId(payload.StudentId, "student_id"); err != nil {
		return nil, err
	}
	created, err := h.services.CreateAssignment(
		request.Context(), payload.StudentId, payload.Topic, payload.DueDateDays,
	)
	if err != nil {
		return nil, err
	}
	return NewResult(created), nil
}

// UploadSolution godoc
// @Summary Upload the work for an assignment
// @Description Stores the work text, replacing any earlier upload.
// @Accept json
// @Produce json
// @Param payload body UploadSolutionRequestPayload true "Work details"
// @Success 200 {object} PublicResponse[MessagePublic] "Upload confirmation"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Failure 404 {object} types.Error "Error: Assignment not found"
// @Router /v1/solutions [post]
func (h *Handler) UploadSolution(request *http.Request) (*Result, *types.Error) {
	payload, err := parseRequestPayload[UploadSolutionRequestPayload](request)
	if err != nil {
		return nil, err
	}
	if err := validateParticipantId(payload.AssignmentId, "assignment_id"); err != nil {
		return nil, err
	}
	if err := h.services.SubmitWork(request.Context(), payload.AssignmentId, payload.Work); err != nil {
		return nil, err
	}
	return NewMessageResult("work uploaded"), nil
}

// GetProgress godoc
// @Summary List progress records
// @Description Retrieves every progress record ordered by creation.
// @Produce json
// @Success 200 {object} PublicResponse[[]services.ProgressRecordPublic]{array} "List of progress records"
// @Router /v1/progress [get]
func (h *Handler) GetProgress(request *http.Request) (*Result, *types.Error) {
	records, err := h.services.GetProgress(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(records), nil
}
