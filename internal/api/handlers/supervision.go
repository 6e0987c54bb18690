package handlers

import (
	"net/http"

	"github.com/sameicp/assignment-monitor/internal/types"
	"github.com/sameicp/assignment-monitor/internal/utils"
)

type VerifyWorkRequestPayload struct {
	SupervisorId string `json:"supervisor_id"`
}

type ClaimFundsRequestPayload struct {
	StudentId        string `json:"student_id"`
	ProgressRecordId string `json:"progress_record_id"`
}

type WorkPublic struct {
	Work string `json:"work"`
}

type ClaimedAmountPublic struct {
	Amount uint64 `json:"amount"`
}

// GetSupervisorList godoc
// @Summary List staked supervisors
// @Description Retrieves the supervisors available for matching.
// @Produce json
// @Success 200 {object} PublicResponse[[]services.SupervisorPublic]{array} "List of supervisors"
// @Router /v1/supervisors [get]
func (h *Handler) GetSupervisorList(request *http.Request) (*Result, *types.Error) {
	supervisors, err := h.services.GetSupervisorList(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(supervisors), nil
}

// ViewWorkDone godoc
// @Summary View the work under supervision
// @Description Retrieves the work uploaded for the supervisor's most recent assignment.
// @Produce json
// @Param supervisor_id query string true "Supervisor id"
// @Success 200 {object} PublicResponse[WorkPublic] "Uploaded work"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Failure 404 {object} types.Error "Error: No active supervision or work not uploaded"
// @Router /v1/work [get]
func (h *Handler) ViewWorkDone(request *http.Request) (*Result, *types.Error) {
	supervisorId, err := parseParticipantIdQuery(request, "supervisor_id")
	if err != nil {
		return nil, err
	}
	work, err := h.services.ViewSubmittedWork(request.Context(), supervisorId)
	if err != nil {
		return nil, err
	}
	return NewResult(WorkPublic{Work: work}), nil
}

// VerifyWorkDone godoc
// @Summary Verify the work under supervision
// @Description Marks the supervisor's most recent assignment as finished and stops the forfeiture countdown.
// @Accept json
// @Param payload body VerifyWorkRequestPayload true "Supervisor id"
// @Success 200 "Work verified"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Failure 404 {object} types.Error "Error: No active supervision or timer not found"
// @Failure 409 {object} types.Error "Error: Assignment already forfeited"
// @Router /v1/verify [post]
func (h *Handler) VerifyWorkDone(request *http.Request) (*Result, *types.Error) {
	payload, err := parseRequestPayload[VerifyWorkRequestPayload](request)
	if err != nil {
		return nil, err
	}
	if err := validateParticipantId(payload.SupervisorId, "supervisor_id"); err != nil {
		return nil, err
	}
	if err := h.services.VerifyWorkDone(request.Context(), payload.SupervisorId); err != nil {
		return nil, err
	}
	return &Result{Status: http.StatusOK}, nil
}

// ClaimFunds godoc
// @Summary Claim back the stake
// @Description Returns the student's stake once their work has been verified. Can only succeed once per progress record.
// @Accept json
// @Produce json
// @Param payload body ClaimFundsRequestPayload true "Claim details"
// @Success 200 {object} PublicResponse[ClaimedAmountPublic] "Claimed amount"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Failure 403 {object} types.Error "Error: Not authorized to claim"
// @Failure 404 {object} types.Error "Error: Progress record not found"
// @Router /v1/claim [post]
func (h *Handler) ClaimFunds(request *http.Request) (*Result, *types.Error) {
	payload, err := parseRequestPayload[ClaimFundsRequestPayload](request)
	if err != nil {
		return nil, err
	}
	if err := validateParticipantId(payload.StudentId, "student_id"); err != nil {
		return nil, err
	}
	if !utils.IsValidProgressRecordId(payload.ProgressRecordId) {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.BadRequest, "invalid progress_record_id",
		)
	}
	amount, err := h.services.ClaimFunds(request.Context(), payload.StudentId, payload.ProgressRecordId)
	if err != nil {
		return nil, err
	}
	return NewResult(ClaimedAmountPublic{Amount: amount}), nil
}
