package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"frontdesk/internal/audit"
	keymetrics "frontdesk/internal/keys/metrics"
	"frontdesk/internal/keys/models"
	"frontdesk/internal/keys/store"
	"frontdesk/internal/notification"
	usermodels "frontdesk/internal/user/models"
	"frontdesk/pkg/domain"
	dErrors "frontdesk/pkg/domain-errors"
	"frontdesk/pkg/platform/sentinel"
	"frontdesk/pkg/requestcontext"
)

var tracer = otel.Tracer("frontdesk/keys")

type Store interface {
	Create(ctx context.Context, k *models.Key) error
	Update(ctx context.Context, k *models.Key) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Key, error)
	List(ctx context.Context) ([]*models.Key, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.Key, error)
	ListByAssignee(ctx context.Context, assignee uuid.UUID) ([]*models.Key, error)
	ListByAccessLevel(ctx context.Context, level models.AccessLevel) ([]*models.Key, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*models.Key, error)
	Execute(ctx context.Context, id uuid.UUID, fn store.Mutation) (*models.Key, error)
	DeleteIf(ctx context.Context, id uuid.UUID, guard func(k *models.Key) error) error
}

// UserLookup resolves assignees and the security staff to alert.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*usermodels.User, error)
	ActiveByRole(ctx context.Context, role domain.Role) ([]*usermodels.User, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, n notification.Notification) (*notification.Record, error)
	DispatchMany(ctx context.Context, t notification.Type, data notification.Data, recipients []uuid.UUID) []*notification.Record
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages key custody.
type Service struct {
	keys           Store
	users          UserLookup
	notifier       Notifier
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *keymetrics.Metrics
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

func WithMetrics(m *keymetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(keys Store, users UserLookup, opts ...Option) *Service {
	s := &Service{keys: keys, users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]*models.Key, error) {
	return byName(s.keys.List(ctx))
}

func (s *Service) ListByStatus(ctx context.Context, rawStatus string) ([]*models.Key, error) {
	status, err := models.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return byName(s.keys.ListByStatus(ctx, status))
}

func (s *Service) ListByAccessLevel(ctx context.Context, rawLevel string) ([]*models.Key, error) {
	level, err := models.ParseAccessLevel(rawLevel)
	if err != nil {
		return nil, err
	}
	return byName(s.keys.ListByAccessLevel(ctx, level))
}

// ListByAssignee returns the keys a user holds, latest checkout first.
func (s *Service) ListByAssignee(ctx context.Context, assignee uuid.UUID) ([]*models.Key, error) {
	keys, err := s.keys.ListByAssignee(ctx, assignee)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list keys")
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return checkoutOf(keys[i]).After(checkoutOf(keys[j]))
	})
	return keys, nil
}

// ListOverdue returns checked-out keys whose expected return has passed,
// most overdue first.
func (s *Service) ListOverdue(ctx context.Context) ([]*models.Key, error) {
	keys, err := s.keys.ListOverdue(ctx, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list keys")
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].ExpectedReturnTime.Before(*keys[j].ExpectedReturnTime)
	})
	if s.metrics != nil {
		s.metrics.SetOverdue(len(keys))
	}
	return keys, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Key, error) {
	k, err := s.keys.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return k, nil
}

func (s *Service) Create(ctx context.Context, req models.CreateKeyRequest) (*models.Key, error) {
	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	k, err := models.NewKey(req, requestcontext.UserID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.keys.Create(ctx, k); err != nil {
		return nil, mapStoreError(err)
	}
	s.emit(ctx, audit.ActionKeyCreated, k.ID, "key_number", k.KeyNumber, "access_level", string(k.AccessLevel))
	return k, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req models.UpdateKeyRequest) (*models.Key, error) {
	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	k, err := s.keys.Execute(ctx, id, func(k *models.Key) error {
		return k.Apply(req, requestcontext.UserID(ctx), requestcontext.Now(ctx))
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	s.emit(ctx, audit.ActionKeyUpdated, k.ID)
	return k, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := requireManager(ctx); err != nil {
		return err
	}
	if err := s.keys.DeleteIf(ctx, id, (*models.Key).CanDelete); err != nil {
		return mapStoreError(err)
	}
	s.emit(ctx, audit.ActionKeyDeleted, id)
	return nil
}

// Checkout hands a key to the caller, or to req.AssignedTo when a key manager
// assigns it. The assignee is resolved before the store's per-key lock is
// taken; only the key state guards run under it.
func (s *Service) Checkout(ctx context.Context, id uuid.UUID, req models.CheckoutRequest) (*models.Key, error) {
	ctx, span := tracer.Start(ctx, "keys.Checkout", trace.WithAttributes(attribute.String("key.id", id.String())))
	defer span.End()

	principal, ok := requestcontext.Principal(ctx)
	if !ok {
		return nil, fail(span, dErrors.New(dErrors.CodeUnauthorized, "Authentication required"))
	}
	now := requestcontext.Now(ctx)

	target := principal.UserID
	if req.AssignedTo != nil && principal.Role.CanManageKeys() {
		target = *req.AssignedTo
	}
	assignee, err := s.resolveAssignee(ctx, target)
	if err != nil {
		return nil, fail(span, err)
	}

	k, err := s.keys.Execute(ctx, id, func(k *models.Key) error {
		if err := k.CanCheckout(principal.Role); err != nil {
			s.countDenied(err)
			return err
		}
		k.ApplyCheckout(target, principal.UserID, req.ExpectedReturnTime, now)
		return nil
	})
	if err != nil {
		return nil, fail(span, mapStoreError(err))
	}
	span.SetAttributes(attribute.String("key.access_level", string(k.AccessLevel)))
	if s.metrics != nil {
		s.metrics.IncCheckout(string(k.AccessLevel))
	}
	s.emit(ctx, audit.ActionKeyCheckedOut, k.ID, "assigned_to", k.AssignedTo.String(), "access_level", string(k.AccessLevel))
	if k.AccessLevel.Elevated() {
		s.alertSecurity(ctx, k, assignee)
	}
	return k, nil
}

// Return puts a key back on the board and tells the previous holder.
func (s *Service) Return(ctx context.Context, id uuid.UUID) (*models.Key, error) {
	ctx, span := tracer.Start(ctx, "keys.Return", trace.WithAttributes(attribute.String("key.id", id.String())))
	defer span.End()

	now := requestcontext.Now(ctx)
	var (
		previous   uuid.UUID
		checkedOut time.Time
	)
	k, err := s.keys.Execute(ctx, id, func(k *models.Key) error {
		if err := k.CanReturn(); err != nil {
			return err
		}
		checkedOut = checkoutOf(k)
		previous = k.ApplyReturn(requestcontext.UserID(ctx), now)
		return nil
	})
	if err != nil {
		return nil, fail(span, mapStoreError(err))
	}
	if s.metrics != nil {
		s.metrics.ObserveReturn(checkedOut, now)
	}
	s.emit(ctx, audit.ActionKeyReturned, k.ID, "previous_holder", previous.String())
	if s.notifier != nil && previous != uuid.Nil {
		_, _ = s.notifier.Dispatch(ctx, notification.Notification{
			Type:        notification.TypeKeyReturned,
			RecipientID: previous,
			Data:        notification.Data{KeyName: k.KeyName, KeyNumber: k.KeyNumber, ReturnTime: now},
		})
	}
	return k, nil
}

// RemindOverdue sends key_overdue to every holder of an overdue key and
// reports how many reminders went out.
func (s *Service) RemindOverdue(ctx context.Context) (int, error) {
	keys, err := s.ListOverdue(ctx)
	if err != nil {
		return 0, err
	}
	if s.notifier == nil {
		return 0, nil
	}
	sent := 0
	for _, k := range keys {
		data := notification.Data{KeyName: k.KeyName, KeyNumber: k.KeyNumber, ExpectedReturnTime: *k.ExpectedReturnTime}
		if u, err := s.users.FindByID(ctx, *k.AssignedTo); err == nil {
			data.AssigneeName = u.Name
		}
		rec, _ := s.notifier.Dispatch(ctx, notification.Notification{
			Type:        notification.TypeKeyOverdue,
			RecipientID: *k.AssignedTo,
			Data:        data,
		})
		if rec != nil {
			sent++
		}
	}
	return sent, nil
}

func (s *Service) resolveAssignee(ctx context.Context, id uuid.UUID) (*usermodels.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) || errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "Assignee not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load assignee")
	}
	if !u.IsActive() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Assignee is not active")
	}
	return u, nil
}

func (s *Service) alertSecurity(ctx context.Context, k *models.Key, assignee *usermodels.User) {
	if s.notifier == nil {
		return
	}
	staff, err := s.users.ActiveByRole(ctx, domain.RoleSecurity)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load security staff for key alert",
			"error", err,
			"key_id", k.ID,
		)
		return
	}
	recipients := make([]uuid.UUID, 0, len(staff))
	for _, u := range staff {
		recipients = append(recipients, u.ID)
	}
	data := notification.Data{KeyName: k.KeyName, KeyNumber: k.KeyNumber, CheckoutTime: checkoutOf(k)}
	if assignee != nil {
		data.AssigneeName = assignee.Name
	}
	records := s.notifier.DispatchMany(ctx, notification.TypeKeyCheckoutAlert, data, recipients)
	if s.metrics != nil {
		s.metrics.AddSecurityAlerts(len(records))
	}
}

func (s *Service) countDenied(err error) {
	if s.metrics == nil {
		return
	}
	reason := "unavailable"
	if dErrors.HasCode(err, dErrors.CodeForbidden) {
		reason = "role"
	}
	s.metrics.IncDenied(reason)
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

func requireManager(ctx context.Context) error {
	principal, ok := requestcontext.Principal(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "Authentication required")
	}
	if !principal.Role.CanManageKeys() {
		return dErrors.New(dErrors.CodeForbidden, "Permission denied")
	}
	return nil
}

func byName(keys []*models.Key, err error) ([]*models.Key, error) {
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list keys")
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].KeyName < keys[j].KeyName })
	return keys, nil
}

func checkoutOf(k *models.Key) time.Time {
	if k.CheckoutTime == nil {
		return time.Time{}
	}
	return *k.CheckoutTime
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, dErrors.MessageOf(err))
	return err
}

// mapStoreError passes classified errors from the mutation through untouched.
func mapStoreError(err error) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "Key not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Duplicate(sentinel.ConflictField(err))
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "key store failure")
	}
}
