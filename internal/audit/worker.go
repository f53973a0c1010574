package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrBufferFull is returned by AsyncSink.Append when the worker is behind.
var ErrBufferFull = errors.New("audit buffer full")

// AsyncSink decouples request latency from a slow sink: Append enqueues and a
// Worker drains the queue into the inner sink.
type AsyncSink struct {
	inbox chan Event
}

func NewAsyncSink(buffer int) *AsyncSink {
	return &AsyncSink{inbox: make(chan Event, buffer)}
}

func (a *AsyncSink) Append(_ context.Context, event Event) error {
	select {
	case a.inbox <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Worker consumes queued events and persists them.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, queue *AsyncSink, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: queue.inbox, logger: logger}
}

// Run drains events until ctx is cancelled, then flushes what is already
// queued with a short grace period.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return nil
		case event := <-w.inbox:
			w.write(ctx, event)
		}
	}
}

func (w *Worker) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.write(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) write(ctx context.Context, event Event) {
	if err := w.sink.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to persist audit event",
			"error", err,
			"action", event.Action,
			"user_id", event.UserID,
		)
	}
}
