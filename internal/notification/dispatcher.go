package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	notificationmetrics "frontdesk/internal/notification/metrics"
	usermodels "frontdesk/internal/user/models"
	"frontdesk/pkg/requestcontext"
)

// maxParallelRecipients bounds DispatchMany fan-out.
const maxParallelRecipients = 8

// UserLookup resolves recipients. Implementations return decrypted users.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*usermodels.User, error)
}

// Dispatcher renders notifications and fans them out across channels.
// Delivery failures are logged and counted, never returned.
type Dispatcher struct {
	users    UserLookup
	channels []Channel
	logger   *slog.Logger
	metrics  *notificationmetrics.Metrics
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *notificationmetrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithChannels replaces the channel set.
func WithChannels(channels ...Channel) Option {
	return func(d *Dispatcher) {
		d.channels = channels
	}
}

func NewDispatcher(users UserLookup, opts ...Option) *Dispatcher {
	d := &Dispatcher{users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers n on every channel its recipient enabled and waits for
// all of them. It returns a nil record, and no error, when the recipient
// cannot be resolved.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) (*Record, error) {
	start := time.Now()
	if d.metrics != nil {
		defer d.metrics.ObserveDispatch(start)
	}

	subject, message := Render(n.Type, n.Data)

	recipient, err := d.users.FindByID(ctx, n.RecipientID)
	if err != nil || recipient == nil {
		d.logger.WarnContext(ctx, "notification recipient not found",
			"type", n.Type,
			"recipient_id", n.RecipientID,
			"error", err,
		)
		if d.metrics != nil {
			d.metrics.IncUnresolved()
		}
		return nil, nil
	}

	var g errgroup.Group
	for _, ch := range d.channels {
		if !ch.Enabled(recipient) {
			continue
		}
		g.Go(func() error {
			sendErr := ch.Send(ctx, recipient, subject, message)
			if sendErr != nil {
				d.logger.ErrorContext(ctx, "notification delivery failed",
					"channel", ch.Name(),
					"type", n.Type,
					"recipient_id", recipient.ID,
					"error", sendErr,
					"request_id", requestcontext.RequestID(ctx),
				)
			}
			if d.metrics != nil {
				d.metrics.ObserveDelivery(ch.Name(), sendErr)
			}
			return nil
		})
	}
	_ = g.Wait()

	return &Record{
		Type:        n.Type,
		RecipientID: recipient.ID,
		Subject:     subject,
		Message:     message,
		SentAt:      requestcontext.Now(ctx),
	}, nil
}

// DispatchMany sends the same event to several recipients concurrently and
// returns the records of those that resolved.
func (d *Dispatcher) DispatchMany(ctx context.Context, t Type, data Data, recipients []uuid.UUID) []*Record {
	var (
		mu      sync.Mutex
		records []*Record
		g       errgroup.Group
	)
	g.SetLimit(maxParallelRecipients)
	for _, id := range recipients {
		g.Go(func() error {
			rec, _ := d.Dispatch(ctx, Notification{Type: t, RecipientID: id, Data: data})
			if rec != nil {
				mu.Lock()
				records = append(records, rec)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return records
}
