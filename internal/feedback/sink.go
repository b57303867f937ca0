package feedback

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event is a prediction the user flagged as incorrect.
type Event struct {
	Id             uuid.UUID         `json:"id"`
	Text           string            `json:"text"`
	OriginalText   string            `json:"original_text"`
	PredictedLabel string            `json:"predicted_label"`
	Timestamp      time.Time         `json:"timestamp"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

type Sink interface {
	Record(ctx context.Context, event Event) error
}

// LogSink emits each event as a structured log record.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(ctx context.Context, event Event) error {
	attrs := []any{
		"event_id", event.Id,
		"text", event.Text,
		"original_text", event.OriginalText,
		"predicted_label", event.PredictedLabel,
		"timestamp", event.Timestamp.Format(time.RFC3339Nano),
	}
	for k, v := range event.Attributes {
		attrs = append(attrs, k, v)
	}

	s.logger.InfoContext(ctx, "incorrect prediction feedback", attrs...)
	return nil
}
