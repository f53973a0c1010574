package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"frontdesk/internal/audit"
	"frontdesk/internal/auth/device"
	authmetrics "frontdesk/internal/auth/metrics"
	"frontdesk/internal/auth/models"
	jwttoken "frontdesk/internal/jwt_token"
	"frontdesk/internal/platform/mailer"
	usermodels "frontdesk/internal/user/models"
	"frontdesk/pkg/domain"
	dErrors "frontdesk/pkg/domain-errors"
	"frontdesk/pkg/platform/sentinel"
	"frontdesk/pkg/requestcontext"
)

const (
	defaultResetTokenTTL = time.Hour
	resetMessage         = "If your email is registered, you will receive a password reset link"
)

// UserStore is the slice of user persistence authentication needs.
type UserStore interface {
	Create(ctx context.Context, user *usermodels.User) error
	Update(ctx context.Context, user *usermodels.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*usermodels.User, error)
	FindByEmail(ctx context.Context, email string) (*usermodels.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*usermodels.User, error)
	FindByResetToken(ctx context.Context, token string) (*usermodels.User, error)
}

type SessionStore interface {
	Add(ctx context.Context, session *models.Session) error
	Contains(ctx context.Context, userID uuid.UUID, tokenHash string, kind models.SessionKind) (bool, error)
	Remove(ctx context.Context, tokenHash string) error
	RemoveAllForUser(ctx context.Context, userID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Session, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, role domain.Role, now time.Time) (jwttoken.Token, error)
	GenerateRefreshToken(userID uuid.UUID, now time.Time) (jwttoken.Token, error)
	ValidateAccessToken(token string) (*jwttoken.Claims, error)
	ValidateRefreshToken(token string) (*jwttoken.Claims, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config holds the link and token settings for account e-mails.
type Config struct {
	FrontendURL   string
	ResetTokenTTL time.Duration
}

// Service issues and revokes bearer tokens and runs the password-reset and
// e-mail verification flows.
type Service struct {
	users          UserStore
	sessions       SessionStore
	tokens         TokenIssuer
	mailer         mailer.Mailer
	cfg            Config
	logger         *slog.Logger
	metrics        *authmetrics.Metrics
	auditPublisher AuditPublisher
	randomToken    func() (string, error)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *authmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMailer(m mailer.Mailer) Option {
	return func(s *Service) {
		s.mailer = m
	}
}

// WithTokenGenerator replaces the generator for reset and verification tokens.
func WithTokenGenerator(gen func() (string, error)) Option {
	return func(s *Service) {
		s.randomToken = gen
	}
}

func New(users UserStore, sessions SessionStore, tokens TokenIssuer, cfg Config, opts ...Option) *Service {
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTokenTTL
	}
	s := &Service{
		users:       users,
		sessions:    sessions,
		tokens:      tokens,
		cfg:         cfg,
		logger:      slog.Default(),
		randomToken: randomHex32,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.mailer == nil {
		s.mailer = mailer.NewLogMailer(s.logger)
	}
	return s
}

var errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "Invalid email or password")

// dummyHash is compared against when the e-mail is unknown so that both
// failure paths pay for one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("frontdesk-timing-equalizer"), bcrypt.DefaultCost)
	return hash
})

// Login verifies credentials and issues an access and a refresh token.
// Unknown e-mail, inactive account and wrong password share one response.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	start := time.Now()

	email, err := usermodels.NormalizeEmail(req.Email)
	if err != nil {
		s.observeLogin(authmetrics.OutcomeInvalidCredentials, start)
		return nil, errInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(req.Password))
		s.loginFailed(ctx, "", "unknown_email")
		s.observeLogin(authmetrics.OutcomeInvalidCredentials, start)
		return nil, errInvalidCredentials
	}
	if err != nil {
		s.observeLogin(authmetrics.OutcomeError, start)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	if !user.CheckPassword(req.Password) {
		s.loginFailed(ctx, user.ID.String(), "wrong_password")
		s.observeLogin(authmetrics.OutcomeInvalidCredentials, start)
		return nil, errInvalidCredentials
	}
	if !user.IsActive() {
		s.logger.WarnContext(ctx, "login attempt on inactive account",
			"user_id", user.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.loginFailed(ctx, user.ID.String(), "inactive")
		s.observeLogin(authmetrics.OutcomeInactive, start)
		return nil, errInvalidCredentials
	}

	result, err := s.issueSessionPair(ctx, user)
	if err != nil {
		s.observeLogin(authmetrics.OutcomeError, start)
		return nil, err
	}

	s.emit(ctx, audit.ActionLoginSucceeded, user.ID, user.ID)
	s.observeLogin(authmetrics.OutcomeSuccess, start)
	return result, nil
}

// Logout removes exactly the token presented on this request.
func (s *Service) Logout(ctx context.Context) error {
	principal, ok := requestcontext.Principal(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "Authentication required")
	}
	if err := s.sessions.Remove(ctx, models.HashToken(principal.Token)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove session")
	}
	if s.metrics != nil {
		s.metrics.IncLogout()
	}
	s.emit(ctx, audit.ActionLogout, principal.UserID, principal.UserID)
	return nil
}

// LogoutAll removes every access and refresh session of the caller.
func (s *Service) LogoutAll(ctx context.Context) error {
	principal, ok := requestcontext.Principal(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "Authentication required")
	}
	if err := s.sessions.RemoveAllForUser(ctx, principal.UserID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove sessions")
	}
	if s.metrics != nil {
		s.metrics.IncLogout()
	}
	s.emit(ctx, audit.ActionLogoutAll, principal.UserID, principal.UserID)
	return nil
}

// Register creates an account, mails a verification link and signs the new
// user in. Self-registration cannot grant the Admin role.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	if req.Role == domain.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "Only admins can change roles")
	}

	now := requestcontext.Now(ctx)
	user, err := usermodels.NewUser(usermodels.NewUserParams{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
		Phone:      req.Phone,
	}, now)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, user.Email); err == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Email already in use")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email")
	}

	verification, err := s.randomToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification token")
	}
	user.VerificationToken = verification

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "Email already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	link := s.cfg.FrontendURL + "/verify-email/" + verification
	if err := s.mailer.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Verify Your Email",
		Text:    "Please verify your email by clicking on the following link: " + link,
		HTML:    `<p>Please verify your email by clicking on the following link: <a href="` + link + `">` + link + `</a></p>`,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to send verification email",
			"error", err,
			"user_id", user.ID,
		)
	}

	result, err := s.issueSessionPair(ctx, user)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.ActionUserRegistered, user.ID, user.ID, "role", user.Role.String())
	return result, nil
}

// ForgotPassword mails a one-hour reset link when the address is known. The
// response never reveals whether it was.
func (s *Service) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (string, error) {
	email, err := usermodels.NormalizeEmail(req.Email)
	if err != nil {
		return resetMessage, nil
	}
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return resetMessage, nil
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	now := requestcontext.Now(ctx)
	token, err := s.randomToken()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate reset token")
	}
	user.IssueResetToken(token, now, s.cfg.ResetTokenTTL)
	if err := s.users.Update(ctx, user); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store reset token")
	}

	link := s.cfg.FrontendURL + "/reset-password/" + token
	sendErr := s.mailer.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Password Reset",
		Text:    "You requested a password reset. Please click on the following link to reset your password: " + link + ". This link is valid for 1 hour.",
		HTML:    `<p>You requested a password reset. Please click on the following link to reset your password: <a href="` + link + `">` + link + `</a>. This link is valid for 1 hour.</p>`,
	})
	if sendErr != nil {
		user.ClearResetToken(now)
		if err := s.users.Update(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "failed to clear reset token after send failure",
				"error", err,
				"user_id", user.ID,
			)
		}
		return "", dErrors.Wrap(sendErr, dErrors.CodeInternal, "error sending reset email")
	}

	s.emit(ctx, audit.ActionPasswordResetRequested, user.ID, user.ID)
	return resetMessage, nil
}

// ResetPassword consumes a reset token, sets the new password and signs the
// user out everywhere.
func (s *Service) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	invalid := dErrors.New(dErrors.CodeBadRequest, "Password reset token is invalid or has expired")
	if req.Token == "" {
		return invalid
	}
	now := requestcontext.Now(ctx)
	user, err := s.users.FindByResetToken(ctx, req.Token)
	if errors.Is(err, sentinel.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !user.ResetTokenValid(req.Token, now) {
		return invalid
	}
	if err := user.SetPassword(req.Password, now); err != nil {
		return err
	}
	user.ClearResetToken(now)
	if err := s.users.Update(ctx, user); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update password")
	}
	if err := s.sessions.RemoveAllForUser(ctx, user.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke sessions after password reset",
			"error", err,
			"user_id", user.ID,
		)
	}
	s.emit(ctx, audit.ActionPasswordReset, user.ID, user.ID)
	return nil
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	invalid := dErrors.New(dErrors.CodeBadRequest, "Email verification token is invalid")
	if token == "" {
		return invalid
	}
	user, err := s.users.FindByVerificationToken(ctx, token)
	if errors.Is(err, sentinel.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	user.MarkEmailVerified(requestcontext.Now(ctx))
	if err := s.users.Update(ctx, user); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify email")
	}
	s.emit(ctx, audit.ActionEmailVerified, user.ID, user.ID)
	return nil
}

// RefreshToken exchanges a recorded refresh token for a new access token.
func (s *Service) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshResult, error) {
	if req.RefreshToken == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Refresh token is required")
	}
	claims, err := s.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired refresh token")
	}
	userID, err := claims.ParseUserID()
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired refresh token")
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "User not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !user.IsActive() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid refresh token")
	}

	known, err := s.sessions.Contains(ctx, user.ID, models.HashToken(req.RefreshToken), models.SessionRefresh)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check refresh token")
	}
	if !known {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid refresh token")
	}

	now := requestcontext.Now(ctx)
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Role, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	if err := s.record(ctx, access, models.SessionAccess, user.ID, now); err != nil {
		return nil, err
	}
	s.emit(ctx, audit.ActionTokenRefreshed, user.ID, user.ID)
	return &models.RefreshResult{AccessToken: access.Value}, nil
}

var errAuthenticationFailed = dErrors.New(dErrors.CodeUnauthorized, "Authentication failed")

// Authenticate resolves a bearer token to its principal. The token must
// verify, still have an access session and belong to an active user. The
// role is read from the user record, not the token.
func (s *Service) Authenticate(ctx context.Context, token string) (*requestcontext.AuthPrincipal, error) {
	principal, err := s.authenticate(ctx, token)
	if s.metrics != nil {
		s.metrics.IncAuthenticate(err == nil)
	}
	return principal, err
}

func (s *Service) authenticate(ctx context.Context, token string) (*requestcontext.AuthPrincipal, error) {
	claims, err := s.tokens.ValidateAccessToken(token)
	if err != nil {
		return nil, errAuthenticationFailed
	}
	userID, err := claims.ParseUserID()
	if err != nil {
		return nil, errAuthenticationFailed
	}

	known, err := s.sessions.Contains(ctx, userID, models.HashToken(token), models.SessionAccess)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check session")
	}
	if !known {
		return nil, errAuthenticationFailed
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, errAuthenticationFailed
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !user.IsActive() {
		return nil, errAuthenticationFailed
	}

	return &requestcontext.AuthPrincipal{UserID: user.ID, Role: user.Role, Token: token}, nil
}

// ListSessions returns the caller's live sessions, newest first, marking the
// one used for this request.
func (s *Service) ListSessions(ctx context.Context) ([]models.SessionSummary, error) {
	principal, ok := requestcontext.Principal(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Authentication required")
	}
	sessions, err := s.sessions.ListForUser(ctx, principal.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
	}
	current := models.HashToken(principal.Token)
	summaries := make([]models.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		summaries = append(summaries, sess.Summary(current))
	}
	sortNewestFirst(summaries)
	return summaries, nil
}

func (s *Service) issueSessionPair(ctx context.Context, user *usermodels.User) (*models.AuthResult, error) {
	now := requestcontext.Now(ctx)
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Role, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue refresh token")
	}
	if err := s.record(ctx, access, models.SessionAccess, user.ID, now); err != nil {
		return nil, err
	}
	if err := s.record(ctx, refresh, models.SessionRefresh, user.ID, now); err != nil {
		return nil, err
	}
	return &models.AuthResult{User: user, Token: access.Value, RefreshToken: refresh.Value}, nil
}

func (s *Service) record(ctx context.Context, token jwttoken.Token, kind models.SessionKind, userID uuid.UUID, now time.Time) error {
	session := models.NewSession(token.Value, kind, userID,
		device.ParseUserAgent(requestcontext.UserAgent(ctx)),
		requestcontext.ClientIP(ctx),
		now, token.ExpiresAt,
	)
	if err := s.sessions.Add(ctx, session); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record session")
	}
	if s.metrics != nil {
		s.metrics.IncSessionIssued(string(kind))
	}
	return nil
}

func (s *Service) observeLogin(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveLogin(outcome, start)
	}
}

func (s *Service) loginFailed(ctx context.Context, userID, reason string) {
	s.logger.InfoContext(ctx, "login failed",
		"reason", reason,
		"user_id", userID,
		"client_ip", requestcontext.ClientIP(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:  audit.ActionLoginFailed,
		UserID:  userID,
		Details: map[string]string{"reason": reason},
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "error", err, "action", audit.ActionLoginFailed)
	}
}

func (s *Service) emit(ctx context.Context, action audit.Action, userID, subject uuid.UUID, kv ...string) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{Action: action, UserID: userID.String(), Subject: subject.String()}
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

func randomHex32() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func sortNewestFirst(sessions []models.SessionSummary) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
}
