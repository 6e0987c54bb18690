package handlers

import (
	"net/http"

	"github.com/sameicp/assignment-monitor/internal/types"
)

type StakeRequestPayload struct {
	ParticipantId string `json:"participant_id"`
	Amount        uint64 `json:"amount"`
}

// Stake godoc
// @Summary Deposit a stake
// @Description Replaces the participant's balance with the given amount. Supervisors join the matching pool.
// @Accept json
// @Produce json
// @Param payload body StakeRequestPayload true "Stake details"
// @Success 200 {object} PublicResponse[MessagePublic] "Stake confirmation"
// @Failure 400 {object} types.Error "Error: Bad Request or stake below the minimum"
// @Failure 404 {object} types.Error "Error: Participant not found"
// @Router /v1/stake [post]
func (h *Handler) Stake(request *http.Request) (*Result, *types.Error) {
	payload, err := parseRequestPayload[StakeRequestPayload](request)
	if err != nil {
		return nil, err
	}
	if err := validateParticipantId(payload.ParticipantId, "participant_id"); err != nil {
		return nil, err
	}
	if err := h.services.Stake(request.Context(), payload.ParticipantId, payload.Amount); err != nil {
		return nil, err
	}
	return NewMessageResult("stake received"), nil
}
