package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sameicp/assignment-monitor/internal/config"
	"github.com/sameicp/assignment-monitor/internal/observability/metrics"
	"github.com/sameicp/assignment-monitor/internal/observability/tracing"
	"github.com/sameicp/assignment-monitor/internal/queue/client"
	"github.com/sameicp/assignment-monitor/internal/queue/handlers"
	"github.com/sameicp/assignment-monitor/internal/services"
)

type Queues struct {
	ExpiredAssignmentQueueClient client.QueueClient
	Handlers                     *handlers.QueueHandler
	processingTimeout            time.Duration
	maxRetryAttempts             int32
}

func New(cfg config.QueueConfig, service *services.Services) (*Queues, error) {
	expiredAssignmentQueueClient, err := client.NewQueueClient(&cfg, client.ExpiredAssignmentQueueName)
	if err != nil {
		return nil, fmt.Errorf("error while creating ExpiredAssignmentQueueClient: %w", err)
	}
	return NewWithClient(cfg, service, expiredAssignmentQueueClient), nil
}

func NewWithClient(cfg config.QueueConfig, service *services.Services, expiredAssignmentQueueClient client.QueueClient) *Queues {
	return &Queues{
		ExpiredAssignmentQueueClient: expiredAssignmentQueueClient,
		Handlers:                     handlers.NewQueueHandler(service),
		processingTimeout:            cfg.QueueProcessingTimeout,
		maxRetryAttempts:             cfg.MsgMaxRetryAttempts,
	}
}

// Start all message processing
func (q *Queues) StartReceivingMessages() error {
	// start processing messages from the expired assignment queue
	return startQueueMessageProcessing(
		q.ExpiredAssignmentQueueClient,
		q.Handlers.ExpiredAssignmentHandler, q.Handlers.HandleUnprocessedMessage,
		q.maxRetryAttempts, q.processingTimeout,
	)
	// ...add more queues here
}

// Turn off all message processing
func (q *Queues) StopReceivingMessages() {
	if err := q.ExpiredAssignmentQueueClient.Stop(); err != nil {
		log.Error().Err(err).Str("queueName", q.ExpiredAssignmentQueueClient.GetQueueName()).
			Msg("error while stopping queue")
	}
}

// PublishExpiredAssignment sends a fired due-date timer to the expired
// assignment queue.
func (q *Queues) PublishExpiredAssignment(ctx context.Context, event client.ExpiredAssignmentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal expired assignment event: %w", err)
	}
	return q.ExpiredAssignmentQueueClient.SendMessage(ctx, string(body))
}

// IsConnectionHealthy checks every queue connection.
func (q *Queues) IsConnectionHealthy() error {
	if err := q.ExpiredAssignmentQueueClient.Ping(); err != nil {
		return fmt.Errorf("queue %s is not healthy: %w", q.ExpiredAssignmentQueueClient.GetQueueName(), err)
	}
	return nil
}

func startQueueMessageProcessing(
	queueClient client.QueueClient,
	handler handlers.MessageHandler, unprocessableHandler handlers.UnprocessableMessageHandler,
	maxRetryAttempts int32, processingTimeout time.Duration,
) error {
	messagesChan, err := queueClient.ReceiveMessages()
	if err != nil {
		log.Error().Err(err).Str("queueName", queueClient.GetQueueName()).Msg("error setting up message channel from queue")
		return err
	}

	go func() {
		for message := range messagesChan {
			processMessage(queueClient, handler, unprocessableHandler, maxRetryAttempts, processingTimeout, message)
		}
	}()
	return nil
}

func processMessage(
	queueClient client.QueueClient,
	handler handlers.MessageHandler, unprocessableHandler handlers.UnprocessableMessageHandler,
	maxRetryAttempts int32, processingTimeout time.Duration, message client.QueueMessage,
) {
	queueName := queueClient.GetQueueName()
	attempts := message.GetRetryAttempts()
	// For each message, create a new context with a deadline or timeout
	ctx, cancel := context.WithTimeout(context.Background(), processingTimeout)
	defer cancel()
	logger := log.With().Str("queueName", queueName).Str("receipt", message.Receipt).
		Int32("attempts", attempts).Logger()
	ctx = logger.WithContext(ctx)

	err := tracing.WrapWithSpanNoResult(ctx, "message_processing", func() error {
		timer := metrics.StartQueueProcessingTimer(queueName)
		if handlerErr := handler(ctx, message.Body); handlerErr != nil {
			timer(metrics.Error)
			return handlerErr
		}
		timer(metrics.Success)
		return nil
	})
	if err != nil {
		// Retry until the max attempts, then park the message in the db for
		// manual inspection and remove it from the queue
		if attempts < maxRetryAttempts {
			logger.Error().Err(err).Msg("error while processing message from queue, will be requeued")
			if reQueueErr := queueClient.ReQueueMessage(ctx, message); reQueueErr != nil {
				logger.Error().Err(reQueueErr).Msg("error while requeuing message")
			}
			return
		}

		logger.Error().Err(err).Msg("exceeded retry attempts, message will be dumped into db for manual inspection")
		if saveErr := unprocessableHandler(ctx, message.Body, message.Receipt); saveErr != nil {
			logger.Error().Err(saveErr).Msg("error while saving unprocessable message")
			return
		}
	}

	if delErr := queueClient.DeleteMessage(message.Receipt); delErr != nil {
		logger.Error().Err(delErr).Msg("error while deleting message from queue")
	}
}
