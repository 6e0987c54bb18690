package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	queueClient "github.com/sameicp/assignment-monitor/internal/queue/client"
	"github.com/sameicp/assignment-monitor/internal/types"
	"github.com/sameicp/assignment-monitor/internal/utils"
)

// ExpiredAssignmentHandler forfeits the stake of an assignment whose due date
// passed. Duplicated and outdated events are acknowledged without effect.
func (h *QueueHandler) ExpiredAssignmentHandler(ctx context.Context, messageBody string) *types.Error {
	var expiredEvent queueClient.ExpiredAssignmentEvent
	err := json.Unmarshal([]byte(messageBody), &expiredEvent)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal the message body into expiredAssignmentEvent")
		return types.NewError(http.StatusBadRequest, types.BadRequest, err)
	}

	if expiredEvent.EventType != queueClient.ExpiredAssignmentEventType {
		return types.NewErrorWithMsg(
			http.StatusBadRequest, types.BadRequest,
			fmt.Sprintf("unexpected event type %d on expired assignment queue", expiredEvent.EventType),
		)
	}
	if utils.IsBlank(expiredEvent.AssignmentId) {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "missing assignment id in expired assignment event")
	}

	return h.Services.ProcessForfeiture(ctx, expiredEvent.AssignmentId)
}
