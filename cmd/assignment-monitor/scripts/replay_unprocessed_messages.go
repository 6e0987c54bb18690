package scripts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sameicp/assignment-monitor/internal/db"
	"github.com/sameicp/assignment-monitor/internal/queue"
	queueClient "github.com/sameicp/assignment-monitor/internal/queue/client"
)

type GenericEvent struct {
	EventType queueClient.EventType `json:"event_type"`
}

// ReplayUnprocessableMessages republishes every message that ran out of
// retries and removes it once it is back on its queue.
func ReplayUnprocessableMessages(ctx context.Context, queues *queue.Queues, db db.DBClient) error {
	unprocessableMessages, err := db.FindUnprocessableMessages(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve unprocessable messages: %w", err)
	}

	messageCount := len(unprocessableMessages)
	log.Info().Int("count", messageCount).Msg("unprocessable messages found")
	if messageCount == 0 {
		return nil
	}

	for _, msg := range unprocessableMessages {
		var genericEvent GenericEvent
		if err := json.Unmarshal([]byte(msg.MessageBody), &genericEvent); err != nil {
			return fmt.Errorf("failed to unmarshal message %s: %w", msg.Id, err)
		}

		if err := processEventMessage(ctx, queues, genericEvent, msg.MessageBody); err != nil {
			return fmt.Errorf("failed to republish message %s: %w", msg.Id, err)
		}

		if err := db.DeleteUnprocessableMessage(ctx, msg.Id); err != nil {
			return fmt.Errorf("failed to delete unprocessable message %s: %w", msg.Id, err)
		}
	}

	log.Info().Int("count", messageCount).Msg("replay of unprocessable messages completed")
	return nil
}

func processEventMessage(ctx context.Context, queues *queue.Queues, event GenericEvent, messageBody string) error {
	switch event.EventType {
	case queueClient.ExpiredAssignmentEventType:
		return queues.ExpiredAssignmentQueueClient.SendMessage(ctx, messageBody)
	default:
		return errors.New("unknown event type")
	}
}
