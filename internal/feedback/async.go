package feedback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrSinkFull   = errors.New("feedback buffer is full")
	ErrSinkClosed = errors.New("feedback sink is closed")
)

const recordTimeout = 30 * time.Second

// AsyncSink decouples the request path from a slow sink. Record only enqueues,
// events are delivered by a fixed set of worker goroutines.
type AsyncSink struct {
	sink   Sink
	events chan Event
	wg     sync.WaitGroup

	closeLock sync.RWMutex
	closed    bool
}

func NewAsyncSink(sink Sink, bufferSize, workers int) *AsyncSink {
	bufferSize = max(bufferSize, 1)
	workers = max(workers, 1)

	a := &AsyncSink{
		sink:   sink,
		events: make(chan Event, bufferSize),
	}

	a.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go a.worker()
	}

	return a
}

func (a *AsyncSink) worker() {
	defer a.wg.Done()

	for event := range a.events {
		// the request context is gone by the time the event is delivered
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := a.sink.Record(ctx, event); err != nil {
			slog.Error("error delivering feedback event", "event_id", event.Id, "error", err)
		}
		cancel()
	}
}

func (a *AsyncSink) Record(_ context.Context, event Event) error {
	a.closeLock.RLock()
	defer a.closeLock.RUnlock()

	if a.closed {
		return ErrSinkClosed
	}

	select {
	case a.events <- event:
		return nil
	default:
		return ErrSinkFull
	}
}

// Close stops accepting events and waits for queued events to be delivered.
func (a *AsyncSink) Close() {
	a.closeLock.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.closeLock.Unlock()

	a.wg.Wait()
}
