package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"frontdesk/internal/audit"
	"frontdesk/internal/notification"
	"frontdesk/internal/shipment/models"
	usermodels "frontdesk/internal/user/models"
	dErrors "frontdesk/pkg/domain-errors"
	"frontdesk/pkg/platform/sentinel"
	"frontdesk/pkg/requestcontext"
)

var tracer = otel.Tracer("frontdesk/shipment")

type Store interface {
	Create(ctx context.Context, s *models.Shipment) error
	Update(ctx context.Context, s *models.Shipment) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	List(ctx context.Context) ([]*models.Shipment, error)
	ListByRecipient(ctx context.Context, recipient uuid.UUID) ([]*models.Shipment, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.Shipment, error)
}

type RecipientLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*usermodels.User, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, n notification.Notification) (*notification.Record, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service tracks shipments from receipt to delivery.
type Service struct {
	shipments      Store
	recipients     RecipientLookup
	notifier       Notifier
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func New(shipments Store, recipients RecipientLookup, opts ...Option) *Service {
	s := &Service{shipments: shipments, recipients: recipients, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]*models.Shipment, error) {
	return s.list(s.shipments.List(ctx))
}

func (s *Service) ListByRecipient(ctx context.Context, recipient uuid.UUID) ([]*models.Shipment, error) {
	return s.list(s.shipments.ListByRecipient(ctx, recipient))
}

func (s *Service) ListByStatus(ctx context.Context, rawStatus string) ([]*models.Shipment, error) {
	status, err := models.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return s.list(s.shipments.ListByStatus(ctx, status))
}

func (s *Service) list(shipments []*models.Shipment, err error) ([]*models.Shipment, error) {
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list shipments")
	}
	sort.SliceStable(shipments, func(i, j int) bool {
		return shipments[i].ReceivedTime.After(shipments[j].ReceivedTime)
	})
	return shipments, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	sh, err := s.shipments.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return sh, nil
}

// Create logs a received shipment and tells the recipient it is waiting.
func (s *Service) Create(ctx context.Context, req models.CreateShipmentRequest) (*models.Shipment, error) {
	ctx, span := tracer.Start(ctx, "shipments.Create")
	defer span.End()

	sh, err := models.NewShipment(req, requestcontext.UserID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.requireRecipient(ctx, sh.Recipient); err != nil {
		return nil, err
	}
	if err := s.shipments.Create(ctx, sh); err != nil {
		return nil, fail(span, mapStoreError(err))
	}
	span.SetAttributes(attribute.String("shipment.id", sh.ID.String()))
	s.emit(ctx, audit.ActionShipmentCreated, sh.ID, "tracking_number", sh.TrackingNumber)
	s.notify(ctx, notification.TypeShipmentReceived, sh)
	return sh, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req models.UpdateShipmentRequest) (*models.Shipment, error) {
	sh, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Recipient != nil && *req.Recipient != sh.Recipient {
		if err := s.requireRecipient(ctx, *req.Recipient); err != nil {
			return nil, err
		}
	}
	if err := sh.Apply(req, requestcontext.UserID(ctx), requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.shipments.Update(ctx, sh); err != nil {
		return nil, mapStoreError(err)
	}
	s.emit(ctx, audit.ActionShipmentUpdated, sh.ID)
	return sh, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.shipments.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	s.emit(ctx, audit.ActionShipmentDeleted, id)
	return nil
}

func (s *Service) MarkInTransit(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	ctx, span := tracer.Start(ctx, "shipments.MarkInTransit", trace.WithAttributes(attribute.String("shipment.id", id.String())))
	defer span.End()

	sh, err := s.Get(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := sh.CanMarkInTransit(); err != nil {
		return nil, fail(span, err)
	}
	sh.ApplyInTransit(requestcontext.UserID(ctx), requestcontext.Now(ctx))
	if err := s.shipments.Update(ctx, sh); err != nil {
		return nil, fail(span, mapStoreError(err))
	}
	s.emit(ctx, audit.ActionShipmentInTransit, sh.ID)
	return sh, nil
}

// MarkDelivered stamps the delivery, attaches an optional signature and
// notifies the recipient.
func (s *Service) MarkDelivered(ctx context.Context, id uuid.UUID, req models.MarkDeliveredRequest) (*models.Shipment, error) {
	ctx, span := tracer.Start(ctx, "shipments.MarkDelivered", trace.WithAttributes(attribute.String("shipment.id", id.String())))
	defer span.End()

	sh, err := s.Get(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := sh.CanMarkDelivered(); err != nil {
		return nil, fail(span, err)
	}
	sh.ApplyDelivered(req.SignatureURL, requestcontext.UserID(ctx), requestcontext.Now(ctx))
	if err := s.shipments.Update(ctx, sh); err != nil {
		return nil, fail(span, mapStoreError(err))
	}
	s.emit(ctx, audit.ActionShipmentDelivered, sh.ID)
	s.notify(ctx, notification.TypeShipmentDelivered, sh)
	return sh, nil
}

func (s *Service) requireRecipient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.recipients.FindByID(ctx, id); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) || errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeBadRequest, "Recipient not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load recipient")
	}
	return nil
}

func (s *Service) notify(ctx context.Context, t notification.Type, sh *models.Shipment) {
	if s.notifier == nil {
		return
	}
	data := notification.Data{Sender: sh.Sender, TrackingNumber: sh.TrackingNumber}
	if sh.DeliveredTime != nil {
		data.DeliveredTime = *sh.DeliveredTime
	}
	_, _ = s.notifier.Dispatch(ctx, notification.Notification{Type: t, RecipientID: sh.Recipient, Data: data})
}

func (s *Service) emit(ctx context.Context, action audit.Action, subject uuid.UUID, kv ...string) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{Action: action, Subject: subject.String()}
	if len(kv) > 0 {
		event.Details = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			event.Details[kv[i]] = kv[i+1]
		}
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"error", err,
			"action", action,
		)
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, dErrors.MessageOf(err))
	return err
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "Shipment not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Duplicate(sentinel.ConflictField(err))
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "shipment store failure")
	}
}
