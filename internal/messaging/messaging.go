package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	FeedbackQueue   = "feedback_queue"
	RetryDelay      = 5 * time.Second
	MaxConnectRetry = 5
)

type Task interface {
	Type() string

	Payload() []byte

	Ack() error

	Nack() error

	Reject() error
}

// FeedbackPayload is the wire form of a flagged prediction.
type FeedbackPayload struct {
	Id             uuid.UUID         `json:"id"`
	Text           string            `json:"text"`
	OriginalText   string            `json:"original_text"`
	PredictedLabel string            `json:"predicted_label"`
	Timestamp      time.Time         `json:"timestamp"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

type Publisher interface {
	PublishFeedback(ctx context.Context, payload FeedbackPayload) error

	Close()
}

type Reciever interface {
	Tasks() <-chan Task

	Close()
}
