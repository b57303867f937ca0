package feedback

import (
	"context"
	"fmt"
	"sentiment-backend/internal/messaging"
)

// QueueSink publishes events to the feedback queue for an out of process
// consumer to persist.
type QueueSink struct {
	publisher messaging.Publisher
}

func NewQueueSink(publisher messaging.Publisher) *QueueSink {
	return &QueueSink{publisher: publisher}
}

func (s *QueueSink) Record(ctx context.Context, event Event) error {
	if err := s.publisher.PublishFeedback(ctx, toPayload(event)); err != nil {
		return fmt.Errorf("error publishing feedback event %s: %w", event.Id, err)
	}
	return nil
}

func toPayload(event Event) messaging.FeedbackPayload {
	return messaging.FeedbackPayload{
		Id:             event.Id,
		Text:           event.Text,
		OriginalText:   event.OriginalText,
		PredictedLabel: event.PredictedLabel,
		Timestamp:      event.Timestamp,
		Attributes:     event.Attributes,
	}
}

func fromPayload(payload messaging.FeedbackPayload) Event {
	return Event{
		Id:             payload.Id,
		Text:           payload.Text,
		OriginalText:   payload.OriginalText,
		PredictedLabel: payload.PredictedLabel,
		Timestamp:      payload.Timestamp,
		Attributes:     payload.Attributes,
	}
}
