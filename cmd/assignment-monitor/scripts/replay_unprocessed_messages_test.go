package scripts

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sameicp/assignment-monitor/internal/config"
	"github.com/sameicp/assignment-monitor/internal/db"
	"github.com/sameicp/assignment-monitor/internal/queue"
	queueClient "github.com/sameicp/assignment-monitor/internal/queue/client"
)

type mockQueueClient struct {
	mock.Mock
}

func (m *mockQueueClient) SendMessage(ctx context.Context, messageBody string) error {
	return m.Called(ctx, messageBody).Error(0)
}

func (m *mockQueueClient) ReceiveMessages() (<-chan queueClient.QueueMessage, error) {
	return nil, nil
}

func (m *mockQueueClient) DeleteMessage(receipt string) error {
	return nil
}

func (m *mockQueueClient) ReQueueMessage(ctx context.Context, message queueClient.QueueMessage) error {
	return nil
}

func (m *mockQueueClient) Stop() error {
	return nil
}

func (m *mockQueueClient) GetQueueName() string {
	return queueClient.ExpiredAssignmentQueueName
}

func (m *mockQueueClient) Ping() error {
	return nil
}

func setupReplay(t *testing.T) (*db.SQLiteDatabase, *mockQueueClient, *queue.Queues) {
	dbClient, err := db.NewSQLiteDatabase(filepath.Join(t.TempDir(), "replay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbClient.Close(context.Background()) })

	client := &mockQueueClient{}
	queues := queue.NewWithClient(config.QueueConfig{}, nil, client)
	return dbClient, client, queues
}

func TestReplayUnprocessableMessages(t *testing.T) {
	ctx := context.Background()
	dbClient, client, queues := setupReplay(t)

	body, err := json.Marshal(queueClient.NewExpiredAssignmentEvent("assignment-1", "progress-1", "student-1"))
	require.NoError(t, err)
	require.NoError(t, dbClient.SaveUnprocessableMessage(ctx, string(body), "receipt-1"))
	client.On("SendMessage", mock.Anything, string(body)).Return(nil).Once()

	require.NoError(t, ReplayUnprocessableMessages(ctx, queues, dbClient))

	client.AssertExpectations(t)
	remaining, err := dbClient.FindUnprocessableMessages(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestReplayKeepsUnknownEvents(t *testing.T) {
	ctx := context.Background()
	dbClient, client, queues := setupReplay(t)

	require.NoError(t, dbClient.SaveUnprocessableMessage(ctx, `{"event_type":42}`, "receipt-2"))

	assert.Error(t, ReplayUnprocessableMessages(ctx, queues, dbClient))

	client.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
	remaining, err := dbClient.FindUnprocessableMessages(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestReplayWithNothingToDo(t *testing.T) {
	dbClient, client, queues := setupReplay(t)

	assert.NoError(t, ReplayUnprocessableMessages(context.Background(), queues, dbClient))
	client.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}
