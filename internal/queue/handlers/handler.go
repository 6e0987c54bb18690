package handlers

import (
	"context"

	"github.com/sameicp/assignment-monitor/internal/services"
	"github.com/sameicp/assignment-monitor/internal/types"
)

type QueueHandler struct {
	Services *services.Services
}

type MessageHandler func(ctx context.Context, messageBody string) *types.Error
type UnprocessableMessageHandler func(ctx context.Context, messageBody, receipt string) *types.Error

func NewQueueHandler(services *services.Services) *QueueHandler {
	return &QueueHandler{
		Services: services,
	}
}

func (qh *QueueHandler) HandleUnprocessedMessage(ctx context.Context, messageBody, receipt string) *types.Error {
	return qh.Services.SaveUnprocessableMessages(ctx, messageBody, receipt)
}
