package handlers

import (
	"net/http"

	"github.com/sameicp/assignment-monitor/internal/types"
)

type RegisterParticipantRequestPayload struct {
	Name        string `json:"name"`
	AreaOfStudy string `json:"area_of_study"`
}

type RegisteredParticipantPublic struct {
	ParticipantId string `json:"participant_id"`
	Message       string `json:"message"`
}

type ParticipantNamePublic struct {
	Name string `json:"name"`
}

type BalancePublic struct {
	Amount uint64 `json:"amount"`
}

// CreateStudent godoc
// @Summary Register a student
// @Description Registers a new student with no stake and a zero balance.
// @Accept json
// @Produce json
// @Param payload body RegisterParticipantRequestPayload true "Student details"
// @Success 200 {object} PublicResponse[RegisteredParticipantPublic] "Registered student id"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/students [post]
func (h *Handler) CreateStudent(request *http.Request) (*Result, *types.Error) {
	return h.registerParticipant(request, types.Student, "student created")
}

// CreateSupervisor godoc
// @Summary Register a supervisor
// @Description Registers a new supervisor. Supervisors join the matching pool once they stake.
// @Accept json
// @Produce json
// @Param payload body RegisterParticipantRequestPayload true "Supervisor details"
// @Success 200 {object} PublicResponse[RegisteredParticipantPublic] "Registered supervisor id"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/supervisors [post]
func (h *Handler) CreateSupervisor(request *http.Request) (*Result, *types.Error) {
	return h.registerParticipant(request, types.Supervisor, "supervisor created")
}

func (h *Handler) registerParticipant(
	request *http.Request, role types.Role, message string,
) (*Result, *types.Error) {
	payload, err := parseRequestPayload[RegisterParticipantRequestPayload](request)
	if err != nil {
		return nil, err
	}
	participantId, err := h.services.RegisterParticipant(
		request.Context(), payload.Name, payload.AreaOfStudy, role,
	)
	if err != nil {
		return nil, err
	}

	return NewResult(RegisteredParticipantPublic{
		ParticipantId: participantId,
		Message:       message,
	}), nil
}

// GetParticipants godoc
// @Summary List participants
// @Description Retrieves every registered student and supervisor.
// @Produce json
// @Success 200 {object} PublicResponse[[]services.ParticipantPublic]{array} "List of participants"
// @Router /v1/participants [get]
func (h *Handler) GetParticipants(request *http.Request) (*Result, *types.Error) {
	participants, err := h.services.GetParticipants(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(participants), nil
}

// GetParticipantName godoc
// @Summary Get a participant's name
// @Produce json
// @Param participant_id query string true "Participant id"
// @Success 200 {object} PublicResponse[ParticipantNamePublic] "Participant name"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Failure 404 {object} types.Error "Error: Participant not found"
// @Router /v1/participant/name [get]
func (h *Handler) GetParticipantName(request *http.Request) (*Result, *types.Error) {
	participantId, err := parseParticipantIdQuery(request, "participant_id")
	if err != nil {
		return nil, err
	}
	name, err := h.services.GetStudentName(request.Context(), participantId)
	if err != nil {
		return nil, err
	}
	return NewResult(ParticipantNamePublic{Name: name}), nil
}

// GetParticipantBalance godoc
// @Summary Get a participant's stake balance
// @Produce json
// @Param participant_id query string true "Participant id"
// @Success 200 {object} PublicResponse[BalancePublic] "Current balance"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Failure 404 {object} types.Error "Error: Participant not found"
// @Router /v1/participant/balance [get]
func (h *Handler) GetParticipantBalance(request *http.Request) (*Result, *types.Error) {
	participantId, err := parseParticipantIdQuery(request, "participant_id")
	if err != nil {
		return nil, err
	}
	amount, err := h.services.GetBalance(request.Context(), participantId)
	if err != nil {
		return nil, err
	}
	return NewResult(BalancePublic{Amount: amount}), nil
}
