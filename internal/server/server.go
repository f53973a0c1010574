// Package server assembles stores, services and handlers into a runnable
// application. Optional backends are chosen from configuration: anything
// left unconfigured falls back to an in-process implementation.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"frontdesk/internal/audit"
	authhandler "frontdesk/internal/auth/handler"
	authmetrics "frontdesk/internal/auth/metrics"
	authservice "frontdesk/internal/auth/service"
	"frontdesk/internal/auth/store/session"
	"frontdesk/internal/health"
	jwttoken "frontdesk/internal/jwt_token"
	keyhandler "frontdesk/internal/keys/handler"
	keymetrics "frontdesk/internal/keys/metrics"
	keyservice "frontdesk/internal/keys/service"
	keystore "frontdesk/internal/keys/store"
	"frontdesk/internal/notification"
	notificationmetrics "frontdesk/internal/notification/metrics"
	"frontdesk/internal/platform/config"
	"frontdesk/internal/platform/fieldcrypt"
	"frontdesk/internal/platform/kafka"
	"frontdesk/internal/platform/mailer"
	"frontdesk/internal/platform/metrics"
	"frontdesk/internal/platform/postgres"
	platformredis "frontdesk/internal/platform/redis"
	"frontdesk/internal/ratelimit"
	ratelimitmetrics "frontdesk/internal/ratelimit/metrics"
	"frontdesk/internal/screening"
	shipmenthandler "frontdesk/internal/shipment/handler"
	shipmentservice "frontdesk/internal/shipment/service"
	shipmentstore "frontdesk/internal/shipment/store"
	httptransport "frontdesk/internal/transport/http"
	userhandler "frontdesk/internal/user/handler"
	userservice "frontdesk/internal/user/service"
	userstore "frontdesk/internal/user/store"
	visitorhandler "frontdesk/internal/visitor/handler"
	visitorservice "frontdesk/internal/visitor/service"
	visitorstore "frontdesk/internal/visitor/store"
	"frontdesk/pkg/platform/httputil"
)

const (
	auditBuffer          = 1024
	overdueSweepInterval = 15 * time.Minute
)

// Server is the assembled application.
type Server struct {
	Handler http.Handler

	logger      *slog.Logger
	keys        *keyservice.Service
	auditWorker *audit.Worker
	closers     []func() error
}

type options struct {
	registry *prometheus.Registry
	now      func() time.Time
}

type Option func(*options)

// WithRegistry registers every collector on reg instead of the process-wide
// default registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithClock overrides the clock used for startup seeding.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

type stores struct {
	users     userstore.Store
	visitors  visitorstore.Store
	shipments shipmentservice.Store
	keys      keystore.Store
}

// New builds the application from cfg. Backends that fail to connect abort
// startup; backends left unconfigured are replaced by memory implementations.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if o.registry != nil {
		registerer, gatherer = o.registry, o.registry
	}

	httputil.ExposeErrorCauses(!cfg.IsProduction())

	s := &Server{logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = s.Close()
		}
	}()

	cipher, err := fieldcrypt.New(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("field encryption: %w", err)
	}
	if err := fieldcrypt.SelfTest(cipher); err != nil {
		return nil, fmt.Errorf("field encryption self-test: %w", err)
	}

	db, st, err := s.openStores(ctx, cfg, cipher)
	if err != nil {
		return nil, err
	}

	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	var (
		sessions authservice.SessionStore = session.NewInMemory()
		limiter  ratelimit.Limiter        = ratelimit.Noop{}
	)
	if rdb != nil {
		s.closers = append(s.closers, rdb.Close)
		sessions = session.NewRedis(rdb.Client)
		limiter = ratelimit.NewRedis(rdb.Client, cfg.RateLimit.Capacity, cfg.RateLimit.RefillPer)
		logger.Info("redis connected; sessions and rate limits are shared")
	} else {
		logger.Warn("redis not configured; sessions are in-memory and rate limiting is off")
	}

	auditPublisher, err := s.openAudit(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mail := mailer.New(cfg.Email, logger)
	users := userservice.New(st.users,
		userservice.WithLogger(logger),
		userservice.WithAuditPublisher(auditPublisher),
		userservice.WithSessionRevoker(sessions),
	)
	dispatcher := notification.NewDispatcher(users,
		notification.WithLogger(logger),
		notification.WithMetrics(notificationmetrics.NewWithRegisterer(registerer)),
		notification.WithChannels(
			notification.NewEmailChannel(mail),
			notification.NewSMSChannel(logger),
			notification.NewSlackChannel(logger),
			notification.NewTeamsChannel(logger),
		),
	)

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTRefreshSecret, cfg.Auth.Issuer,
		cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	auth := authservice.New(st.users, sessions, tokens,
		authservice.Config{FrontendURL: cfg.FrontendURL},
		authservice.WithLogger(logger),
		authservice.WithMetrics(authmetrics.NewWithRegisterer(registerer)),
		authservice.WithAuditPublisher(auditPublisher),
		authservice.WithMailer(mail),
	)

	visitorOpts := []visitorservice.Option{
		visitorservice.WithLogger(logger),
		visitorservice.WithAuditPublisher(auditPublisher),
		visitorservice.WithNotifier(dispatcher),
		visitorservice.WithWatchlistChecker(screening.StaticWatchlist{}),
	}
	if cfg.AWSRegion != "" {
		analyzers, err := screening.NewAWS(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("screening: %w", err)
		}
		visitorOpts = append(visitorOpts,
			visitorservice.WithSentimentAnalyzer(analyzers.Sentiment),
			visitorservice.WithFaceAnalyzer(analyzers.Faces),
		)
	} else {
		logger.Warn("AWS_REGION not set; visitor photo and sentiment screening are disabled")
	}
	visitors := visitorservice.New(st.visitors, users, visitorOpts...)

	shipments := shipmentservice.New(st.shipments, users,
		shipmentservice.WithLogger(logger),
		shipmentservice.WithAuditPublisher(auditPublisher),
		shipmentservice.WithNotifier(dispatcher),
	)
	s.keys = keyservice.New(st.keys, users,
		keyservice.WithLogger(logger),
		keyservice.WithAuditPublisher(auditPublisher),
		keyservice.WithNotifier(dispatcher),
		keyservice.WithMetrics(keymetrics.NewWithRegisterer(registerer)),
	)

	seeded, err := userstore.SeedBootstrapAdmin(ctx, st.users, userstore.BootstrapAdmin{
		Name:     cfg.Bootstrap.AdminName,
		Email:    cfg.Bootstrap.AdminEmail,
		Password: cfg.Bootstrap.AdminPassword,
	}, o.now())
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if seeded {
		logger.Info("bootstrap admin created", "email", cfg.Bootstrap.AdminEmail)
	}

	var healthOpts []health.Option
	if db != nil {
		healthOpts = append(healthOpts, health.WithDatabase(func(ctx context.Context) error { return postgres.Health(ctx, db) }))
	}
	if rdb != nil {
		healthOpts = append(healthOpts, health.WithRedis(rdb.Health))
	}

	limits := ratelimit.New(limiter, logger,
		ratelimit.WithScope("auth"),
		ratelimit.WithMetrics(ratelimitmetrics.NewWithRegisterer(registerer)),
	)
	s.Handler = httptransport.NewRouter(httptransport.Dependencies{
		Logger:        logger,
		Metrics:       metrics.NewWithRegisterer(registerer),
		Gatherer:      gatherer,
		Authenticator: auth,
		RateLimit:     limits.PerIP,
		CORSOrigins:   cfg.Server.CORSAllowedOrigins,
		Health:        health.New(cfg.Server.Version, cfg.Server.Environment, o.now(), healthOpts...),
		Auth:          authhandler.New(auth, logger),
		Protected: []httptransport.Registrar{
			userhandler.New(users, logger),
			visitorhandler.New(visitors, logger),
			shipmenthandler.New(shipments, logger),
			keyhandler.New(s.keys, logger),
		},
	})

	ok = true
	return s, nil
}

func (s *Server) openStores(ctx context.Context, cfg config.Config, cipher fieldcrypt.Cipher) (*sql.DB, stores, error) {
	if cfg.Database.URL == "" {
		s.logger.Warn("DATABASE_URL not set; using in-memory stores")
		return nil, stores{
			users:     userstore.NewEncrypted(userstore.NewInMemory(), cipher),
			visitors:  visitorstore.NewEncrypted(visitorstore.NewInMemory(), cipher),
			shipments: shipmentstore.NewInMemory(),
			keys:      keystore.NewInMemory(),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, stores{}, fmt.Errorf("postgres: %w", err)
	}
	s.closers = append(s.closers, db.Close)
	if err := postgres.Migrate(ctx, db); err != nil {
		return nil, stores{}, fmt.Errorf("migrate: %w", err)
	}
	s.logger.Info("postgres connected")
	return db, stores{
		users:     userstore.NewEncrypted(userstore.NewPostgres(db), cipher),
		visitors:  visitorstore.NewEncrypted(visitorstore.NewPostgres(db), cipher),
		shipments: shipmentstore.NewPostgres(db),
		keys:      keystore.NewPostgres(db),
	}, nil
}

// openAudit streams events to Kafka through a buffered worker when brokers
// are configured, and keeps them in memory otherwise.
func (s *Server) openAudit(ctx context.Context, cfg config.Config) (*audit.Publisher, error) {
	client, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("kafka: %w", err)
	}
	if client == nil {
		return audit.NewPublisher(audit.NewMemorySink()), nil
	}
	s.closers = append(s.closers, closeKafka(client))
	if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.AuditTopic, 1, 1); err != nil {
		return nil, fmt.Errorf("audit topic: %w", err)
	}
	queue := audit.NewAsyncSink(auditBuffer)
	s.auditWorker = audit.NewWorker(audit.NewKafkaSink(client, cfg.Kafka.AuditTopic), queue, s.logger)
	s.logger.Info("audit events stream to kafka", "topic", cfg.Kafka.AuditTopic)
	return audit.NewPublisher(queue), nil
}

func closeKafka(client *kgo.Client) func() error {
	return func() error {
		client.Close()
		return nil
	}
}

// RunBackground runs the audit worker and the overdue-key sweep until ctx
// is cancelled.
func (s *Server) RunBackground(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if s.auditWorker != nil {
		g.Go(func() error { return s.auditWorker.Run(ctx) })
	}
	g.Go(func() error {
		ticker := time.NewTicker(overdueSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.SweepOverdue(ctx)
			}
		}
	})
	return g.Wait()
}

// SweepOverdue reminds the holders of overdue keys once.
func (s *Server) SweepOverdue(ctx context.Context) {
	sent, err := s.keys.RemindOverdue(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "overdue key sweep failed", "error", err)
		return
	}
	if sent > 0 {
		s.logger.InfoContext(ctx, "overdue key reminders sent", "count", sent)
	}
}

// Close releases backend connections in reverse order of opening.
func (s *Server) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
