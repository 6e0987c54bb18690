package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sameicp/assignment-monitor/internal/config"
	"github.com/sameicp/assignment-monitor/internal/services"
	"github.com/sameicp/assignment-monitor/internal/types"
	"github.com/sameicp/assignment-monitor/internal/utils"
)

type Handler struct {
	config   *config.Config
	services *services.Services
}

type PublicResponse[T any] struct {
	Data T `json:"data"`
}

type Result struct {
	Data   interface{}
	Status int
}

type MessagePublic struct {
	Message string `json:"message"`
}

// NewResult returns a successful result, with default status code 200
func NewResult[T any](data T) *Result {
	res := &PublicResponse[T]{Data: data}
	return &Result{Data: res, Status: http.StatusOK}
}

func NewMessageResult(message string) *Result {
	return NewResult(MessagePublic{Message: message})
}

func New(
	ctx context.Context, cfg *config.Config, services *services.Services,
) (*Handler, error) {
	return &Handler{
		config:   cfg,
		services: services,
	}, nil
}

func parseRequestPayload[T any](request *http.Request) (*T, *types.Error) {
	payload := new(T)
	err := json.NewDecoder(request.Body).Decode(payload)
	if err != nil {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid request payload")
	}
	return payload, nil
}

func parseParticipantIdQuery(request *http.Request, queryName string) (string, *types.Error) {
	id := request.URL.Query().Get(queryName)
	if id == "" {
		return "", types.NewErrorWithMsg(
			http.StatusBadRequest, types.BadRequest, queryName+" is required",
		)
	}
	if !utils.IsValidParticipantId(id) {
		return "", types.NewErrorWithMsg(
			http.StatusBadRequest, types.BadRequest, "invalid "+queryName,
		)
	}
	return id, nil
}

func validateParticipantId(id, fieldName string) *types.Error {
	if !utils.IsValidParticipantId(id) {
		return types.NewErrorWithMsg(
			http.StatusBadRequest, types.BadRequest, "invalid "+fieldName,
		)
	}
	return nil
}
