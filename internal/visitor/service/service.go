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
	"frontdesk/internal/screening"
	usermodels "frontdesk/internal/user/models"
	"frontdesk/internal/visitor/models"
	dErrors "frontdesk/pkg/domain-errors"
	"frontdesk/pkg/platform/sentinel"
	"frontdesk/pkg/requestcontext"
)

var tracer = otel.Tracer("frontdesk/visitor")

type Store interface {
	Create(ctx context.Context, v *models.Visitor) error
	Update(ctx context.Context, v *models.Visitor) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error)
	List(ctx context.Context) ([]*models.Visitor, error)
}

// HostLookup resolves the staff member a visitor is meeting.
type HostLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*usermodels.User, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, n notification.Notification) (*notification.Record, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages visitor records, check-in and AI screening.
type Service struct {
	visitors       Store
	hosts          HostLookup
	notifier       Notifier
	sentiment      screening.SentimentAnalyzer
	faces          screening.FaceAnalyzer
	watchlist      screening.WatchlistChecker
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

// WithSentimentAnalyzer enables screening of visitor notes at creation.
func WithSentimentAnalyzer(a screening.SentimentAnalyzer) Option {
	return func(s *Service) {
		s.sentiment = a
	}
}

func WithFaceAnalyzer(a screening.FaceAnalyzer) Option {
	return func(s *Service) {
		s.faces = a
	}
}

func WithWatchlistChecker(c screening.WatchlistChecker) Option {
	return func(s *Service) {
		s.watchlist = c
	}
}

func New(visitors Store, hosts HostLookup, opts ...Option) *Service {
	s := &Service{
		visitors:  visitors,
		hosts:     hosts,
		watchlist: screening.StaticWatchlist{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every visitor, latest visit date first.
func (s *Service) List(ctx context.Context) ([]*models.Visitor, error) {
	visitors, err := s.visitors.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list visitors")
	}
	sort.SliceStable(visitors, func(i, j int) bool {
		return visitors[i].VisitDate.After(visitors[j].VisitDate)
	})
	return visitors, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Visitor, error) {
	v, err := s.visitors.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return v, nil
}

// Create pre-registers a visitor. Notes are screened when an analyzer is
// configured; screening failures never block the registration.
func (s *Service) Create(ctx context.Context, req models.CreateVisitorRequest) (*models.Visitor, error) {
	ctx, span := tracer.Start(ctx, "visitors.Create")
	defer span.End()

	v, err := models.NewVisitor(req, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	host, err := s.hosts.FindByID(ctx, v.Host)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) || errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "Host not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load host")
	}

	if v.Notes != "" {
		s.screenNotes(ctx, v)
	}

	if err := s.visitors.Create(ctx, v); err != nil {
		return nil, fail(span, mapStoreError(err))
	}
	span.SetAttributes(attribute.String("visitor.id", v.ID.String()))
	s.emit(ctx, audit.ActionVisitorCreated, v.ID, "host", host.ID.String())
	s.notify(ctx, notification.TypeVisitorApprovalRequest, v)
	return v, nil
}

func (s *Service) screenNotes(ctx context.Context, v *models.Visitor) {
	if s.sentiment == nil {
		return
	}
	sentiment, err := s.sentiment.DetectSentiment(ctx, v.Notes)
	if err != nil {
		s.logger.WarnContext(ctx, "visitor notes analysis failed",
			"error", err,
			"visitor_id", v.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	v.Flag(sentiment)
	if len(v.AIAnalysis.SecurityConcerns) > 0 {
		s.logger.InfoContext(ctx, "visitor flagged by screening",
			"visitor_id", v.ID,
			"concerns", v.AIAnalysis.SecurityConcerns,
		)
	}
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req models.UpdateVisitorRequest) (*models.Visitor, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := v.Status
	if err := v.Apply(req, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.visitors.Update(ctx, v); err != nil {
		return nil, mapStoreError(err)
	}
	if v.Status != previous {
		s.emit(ctx, audit.ActionVisitorUpdated, v.ID, "from", string(previous), "to", string(v.Status))
	} else {
		s.emit(ctx, audit.ActionVisitorUpdated, v.ID)
	}
	return v, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.visitors.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	s.emit(ctx, audit.ActionVisitorDeleted, id)
	return nil
}

func (s *Service) CheckIn(ctx context.Context, id uuid.UUID) (*models.Visitor, error) {
	ctx, span := tracer.Start(ctx, "visitors.CheckIn", trace.WithAttributes(attribute.String("visitor.id", id.String())))
	defer span.End()

	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := v.CanCheckIn(); err != nil {
		return nil, fail(span, err)
	}
	v.ApplyCheckIn(requestcontext.Now(ctx))
	if err := s.visitors.Update(ctx, v); err != nil {
		return nil, fail(span, mapStoreError(err))
	}
	s.emit(ctx, audit.ActionVisitorCheckedIn, v.ID)
	s.notify(ctx, notification.TypeVisitorArrival, v)
	return v, nil
}

func (s *Service) CheckOut(ctx context.Context, id uuid.UUID) (*models.Visitor, error) {
	ctx, span := tracer.Start(ctx, "visitors.CheckOut", trace.WithAttributes(attribute.String("visitor.id", id.String())))
	defer span.End()

	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := v.CanCheckOut(); err != nil {
		return nil, fail(span, err)
	}
	v.ApplyCheckOut(requestcontext.Now(ctx))
	if err := s.visitors.Update(ctx, v); err != nil {
		return nil, fail(span, mapStoreError(err))
	}
	s.emit(ctx, audit.ActionVisitorCheckedOut, v.ID)
	s.notify(ctx, notification.TypeVisitorCheckout, v)
	return v, nil
}

// AnalyzePhoto runs face detection on an uploaded image.
func (s *Service) AnalyzePhoto(ctx context.Context, image []byte) (*screening.FaceAnalysis, error) {
	if len(image) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "No photo provided")
	}
	if s.faces == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "photo analysis is not configured")
	}
	ctx, span := tracer.Start(ctx, "visitors.AnalyzePhoto", trace.WithAttributes(attribute.Int("image.bytes", len(image))))
	defer span.End()

	result, err := s.faces.DetectFaces(ctx, image)
	if err != nil {
		return nil, fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "photo analysis failed"))
	}
	return result, nil
}

func (s *Service) CheckWatchlist(ctx context.Context, image []byte) (*screening.WatchlistResult, error) {
	if len(image) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "No photo provided")
	}
	result, err := s.watchlist.CheckWatchlist(ctx, image)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "watchlist check failed")
	}
	return result, nil
}

func (s *Service) notify(ctx context.Context, t notification.Type, v *models.Visitor) {
	if s.notifier == nil {
		return
	}
	data := notification.Data{
		VisitorName: v.Name,
		Company:     v.Company,
		Purpose:     v.Purpose,
		VisitDate:   v.VisitDate,
	}
	if v.CheckInTime != nil {
		data.CheckInTime = *v.CheckInTime
	}
	if v.CheckOutTime != nil {
		data.CheckOutTime = *v.CheckOutTime
	}
	// Dispatch logs its own channel failures.
	_, _ = s.notifier.Dispatch(ctx, notification.Notification{Type: t, RecipientID: v.Host, Data: data})
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
		return dErrors.New(dErrors.CodeNotFound, "Visitor not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "visitor store failure")
	}
}
