package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueuePublishFeedback(t *testing.T) {
	queue := NewInMemoryQueue(4)

	payload := FeedbackPayload{
		Id:             uuid.New(),
		Text:           "the food was cold",
		OriginalText:   "la comida estaba fría",
		PredictedLabel: "Positive",
		Timestamp:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, queue.PublishFeedback(context.Background(), payload))
	queue.Close()

	task, ok := <-queue.Tasks()
	require.True(t, ok)
	assert.Equal(t, FeedbackQueue, task.Type())

	var decoded FeedbackPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, payload, decoded)
	assert.NoError(t, task.Ack())

	_, ok = <-queue.Tasks()
	assert.False(t, ok)
}

func TestInMemoryQueuePublishAfterClose(t *testing.T) {
	queue := NewInMemoryQueue(1)
	queue.Close()
	queue.Close()

	err := queue.PublishFeedback(context.Background(), FeedbackPayload{Id: uuid.New()})
	assert.Error(t, err)
}

func TestInMemoryQueuePublishRespectsContext(t *testing.T) {
	queue := NewInMemoryQueue(1)
	defer queue.Close()

	require.NoError(t, queue.PublishFeedback(context.Background(), FeedbackPayload{Id: uuid.New()}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := queue.PublishFeedback(ctx, FeedbackPayload{Id: uuid.New()})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
