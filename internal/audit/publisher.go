package audit

import (
	"context"

	"frontdesk/pkg/requestcontext"
)

// Sink persists audit events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and delegates
// persistence to a Sink so tests can swap sinks easily.
type Publisher struct {
	sink Sink
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

// Emit stamps the event with request-scoped metadata and appends it.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserID == "" {
		if p, ok := requestcontext.Principal(ctx); ok {
			event.UserID = p.UserID.String()
		}
	}
	return p.sink.Append(ctx, event)
}
