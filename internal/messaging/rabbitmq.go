package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrConnectionClosed = errors.New("rabbitmq connection is closed")

// openFeedbackChannel dials the broker, retrying up to MaxConnectRetry times,
// and returns a channel on which the feedback queue is declared.
func openFeedbackChannel(url string) (*amqp.Connection, *amqp.Channel, error) {
	var conn *amqp.Connection
	var err error
	for attempt := 1; attempt <= MaxConnectRetry; attempt++ {
		if conn, err = amqp.Dial(url); err == nil {
			break
		}
		slog.Warn("failed to connect to rabbitmq", "attempt", attempt, "max_attempts", MaxConnectRetry, "error", err)
		time.Sleep(RetryDelay)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to rabbitmq after %d attempts: %w", MaxConnectRetry, err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	if _, err := channel.QueueDeclare(FeedbackQueue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare queue %s: %w", FeedbackQueue, err)
	}

	slog.Info("connected to rabbitmq", "queue", FeedbackQueue)
	return conn, channel, nil
}

type RabbitMQPublisher struct {
	url string

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

var _ Publisher = (*RabbitMQPublisher)(nil)

func NewRabbitMQPublisher(rabbitMQURL string) (*RabbitMQPublisher, error) {
	p := &RabbitMQPublisher{url: rabbitMQURL}

	conn, channel, err := openFeedbackChannel(rabbitMQURL)
	if err != nil {
		return nil, err
	}
	p.conn, p.channel = conn, channel
	go p.watch(channel)

	return p, nil
}

// watch re-dials when the channel drops. Publishes fail with
// ErrConnectionClosed until the new channel is in place.
func (p *RabbitMQPublisher) watch(channel *amqp.Channel) {
	amqpErr, ok := <-channel.NotifyClose(make(chan *amqp.Error, 1))
	if !ok {
		return
	}
	slog.Warn("rabbitmq publisher channel closed, reconnecting", "error", amqpErr)

	p.mu.Lock()
	p.conn, p.channel = nil, nil
	p.mu.Unlock()

	for {
		conn, channel, err := openFeedbackChannel(p.url)
		if err == nil {
			p.mu.Lock()
			if p.closed {
				p.mu.Unlock()
				conn.Close()
				return
			}
			p.conn, p.channel = conn, channel
			p.mu.Unlock()

			slog.Info("rabbitmq publisher reconnected")
			go p.watch(channel)
			return
		}

		p.mu.RLock()
		closed := p.closed
		p.mu.RUnlock()
		if closed {
			return
		}
		time.Sleep(RetryDelay * 10)
	}
}

func (p *RabbitMQPublisher) PublishFeedback(ctx context.Context, payload FeedbackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback payload: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || p.channel == nil || p.channel.IsClosed() {
		return ErrConnectionClosed
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    payload.Id.String(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.channel.PublishWithContext(ctx, "", FeedbackQueue, false, false, msg); err != nil {
		slog.Error("failed to publish feedback", "event_id", payload.Id, "error", err)
		return fmt.Errorf("failed to publish to %s: %w", FeedbackQueue, err)
	}

	return nil
}

func (p *RabbitMQPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			slog.Error("error closing rabbitmq connection", "error", err)
		}
	}
}

type RabbitMQTask struct {
	d amqp.Delivery
}

func (t *RabbitMQTask) Type() string {
	return t.d.RoutingKey
}

func (t *RabbitMQTask) Payload() []byte {
	return t.d.Body
}

func (t *RabbitMQTask) Ack() error {
	return t.d.Ack(false)
}

// Nack requeues a delivery once. A delivery that already failed after being
// redelivered is dropped.
func (t *RabbitMQTask) Nack() error {
	if t.d.Redelivered {
		slog.Warn("dropping feedback delivery after repeated failure", "message_id", t.d.MessageId)
	}
	return t.d.Nack(false, !t.d.Redelivered)
}

func (t *RabbitMQTask) Reject() error {
	return t.d.Reject(false)
}

type RabbitMQReceiver struct {
	url      string
	tasks    chan Task
	stop     chan struct{}
	stopOnce sync.Once
}

var _ Reciever = (*RabbitMQReceiver)(nil)

func NewRabbitMQReceiver(rabbitMQURL string) (*RabbitMQReceiver, error) {
	r := &RabbitMQReceiver{
		url:   rabbitMQURL,
		tasks: make(chan Task),
		stop:  make(chan struct{}),
	}

	if err := r.subscribe(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RabbitMQReceiver) subscribe() error {
	conn, channel, err := openFeedbackChannel(r.url)
	if err != nil {
		return err
	}

	if err := channel.Qos(1, 0, false); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set channel qos: %w", err)
	}

	deliveries, err := channel.Consume(FeedbackQueue, "", false, false, false, false, nil)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to consume from %s: %w", FeedbackQueue, err)
	}

	go r.forward(deliveries)
	go r.watch(conn, channel)

	return nil
}

func (r *RabbitMQReceiver) forward(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		select {
		case r.tasks <- &RabbitMQTask{d: d}:
		case <-r.stop:
			return
		}
	}
}

func (r *RabbitMQReceiver) watch(conn *amqp.Connection, channel *amqp.Channel) {
	select {
	case amqpErr, ok := <-channel.NotifyClose(make(chan *amqp.Error, 1)):
		if !ok {
			return
		}
		slog.Warn("rabbitmq consumer channel closed, reconnecting", "error", amqpErr)

		for {
			select {
			case <-r.stop:
				return
			default:
			}
			if r.subscribe() == nil {
				slog.Info("rabbitmq consumer reconnected")
				return
			}
			time.Sleep(RetryDelay * 10)
		}

	case <-r.stop:
		if err := conn.Close(); err != nil {
			slog.Error("error closing rabbitmq connection", "error", err)
		}
	}
}

func (r *RabbitMQReceiver) Tasks() <-chan Task {
	return r.tasks
}

func (r *RabbitMQReceiver) Close() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}
