package feedback

import (
	"context"
	"encoding/json"
	"log/slog"
	"sentiment-backend/internal/messaging"
)

// Consumer drains the feedback queue into a sink. Malformed messages are
// rejected, sink failures are nacked for redelivery.
type Consumer struct {
	reciever messaging.Reciever
	sink     Sink
}

func NewConsumer(reciever messaging.Reciever, sink Sink) *Consumer {
	return &Consumer{reciever: reciever, sink: sink}
}

// Run blocks until ctx is cancelled or the reciever's task channel is closed.
func (c *Consumer) Run(ctx context.Context) {
	slog.Info("starting feedback consumer")

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping feedback consumer")
			return
		case task, ok := <-c.reciever.Tasks():
			if !ok {
				slog.Info("feedback queue closed, stopping consumer")
				return
			}
			c.ProcessTask(ctx, task)
		}
	}
}

func (c *Consumer) ProcessTask(ctx context.Context, task messaging.Task) {
	if task.Type() != messaging.FeedbackQueue {
		slog.Error("received task from unexpected queue", "queue", task.Type())
		if err := task.Reject(); err != nil {
			slog.Error("error rejecting message from queue", "error", err)
		}
		return
	}

	var payload messaging.FeedbackPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		slog.Error("error unmarshalling feedback task", "error", err)
		if err := task.Reject(); err != nil { // discard malformed message
			slog.Error("error rejecting message from queue", "error", err)
		}
		return
	}

	if err := c.sink.Record(ctx, fromPayload(payload)); err != nil {
		slog.Error("error recording feedback event", "event_id", payload.Id, "error", err)
		if err := task.Nack(); err != nil {
			slog.Error("error nacking message from queue", "error", err)
		}
		return
	}

	if err := task.Ack(); err != nil {
		slog.Error("error acking message from queue", "error", err)
	}
}
