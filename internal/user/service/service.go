package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"frontdesk/internal/audit"
	"frontdesk/internal/user/models"
	"frontdesk/pkg/domain"
	dErrors "frontdesk/pkg/domain-errors"
	"frontdesk/pkg/platform/sentinel"
	"frontdesk/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*models.User, error)
	ListByDepartment(ctx context.Context, department string) ([]*models.User, error)
}

// SessionRevoker drops every session a user holds.
type SessionRevoker interface {
	RemoveAllForUser(ctx context.Context, userID uuid.UUID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements user administration and self-service profile changes.
type Service struct {
	users          Store
	sessions       SessionRevoker
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

// WithSessionRevoker makes Delete also drop the deleted user's sessions.
func WithSessionRevoker(revoker SessionRevoker) Option {
	return func(s *Service) {
		s.sessions = revoker
	}
}

func New(users Store, opts ...Option) *Service {
	s := &Service{users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return sortByName(users), nil
}

func (s *Service) ListByRole(ctx context.Context, rawRole string) ([]*models.User, error) {
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, dErrors.MessageOf(err))
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return sortByName(users), nil
}

func (s *Service) ListByDepartment(ctx context.Context, department string) ([]*models.User, error) {
	users, err := s.users.ListByDepartment(ctx, department)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return sortByName(users), nil
}

// ActiveByRole lists active users holding role. Used to address alerts.
func (s *Service) ActiveByRole(ctx context.Context, role domain.Role) ([]*models.User, error) {
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	active := users[:0]
	for _, u := range users {
		if u.IsActive() {
			active = append(active, u)
		}
	}
	return active, nil
}

// FindByID loads a user without an authorization check, for internal lookups.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return u, nil
}

// Get returns a user to an admin or to the user themself.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAdminOrSelf(ctx, id); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if email, err := models.NormalizeEmail(req.Email); err == nil {
		if _, err := s.users.FindByEmail(ctx, email); err == nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "Email already in use")
		}
	}

	u, err := models.NewUser(models.NewUserParams{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
		Phone:      req.Phone,
	}, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, mapStoreError(err)
	}
	s.emit(ctx, audit.ActionUserCreated, u.ID, "role", string(u.Role))
	return u, nil
}

// Update applies the whitelisted fields. Admins may also change role and
// status; anyone else sending a role is refused.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req models.UpdateUserRequest) (*models.User, error) {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAdminOrSelf(ctx, id); err != nil {
		return nil, err
	}
	principal, _ := requestcontext.Principal(ctx)
	isAdmin := principal.Role == domain.RoleAdmin

	if req.Role != nil && !isAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "Only admins can change roles")
	}
	if err := s.applyProfile(u, req.ProfileUpdateRequest); err != nil {
		return nil, err
	}

	previousRole := u.Role
	if isAdmin {
		if req.Role != nil {
			if !req.Role.IsValid() {
				return nil, dErrors.Validation("Invalid role")
			}
			u.Role = *req.Role
		}
		if req.Status != nil {
			if !req.Status.IsValid() {
				return nil, dErrors.Validation("Invalid status")
			}
			u.Status = *req.Status
		}
	}

	u.UpdatedAt = requestcontext.Now(ctx)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, mapStoreError(err)
	}

	s.emit(ctx, audit.ActionUserUpdated, u.ID)
	if u.Role != previousRole {
		s.emit(ctx, audit.ActionUserRoleChanged, u.ID, "from", string(previousRole), "to", string(u.Role))
	}
	if !u.IsActive() {
		s.revokeSessions(ctx, u.ID)
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	s.revokeSessions(ctx, id)
	s.emit(ctx, audit.ActionUserDeleted, id)
	return nil
}

// Me returns the caller's own record.
func (s *Service) Me(ctx context.Context) (*models.User, error) {
	return s.FindByID(ctx, requestcontext.UserID(ctx))
}

func (s *Service) UpdateMe(ctx context.Context, req models.ProfileUpdateRequest) (*models.User, error) {
	u, err := s.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.applyProfile(u, req); err != nil {
		return nil, err
	}
	u.UpdatedAt = requestcontext.Now(ctx)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, mapStoreError(err)
	}
	s.emit(ctx, audit.ActionUserUpdated, u.ID)
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Current password and new password are required")
	}
	u, err := s.Me(ctx)
	if err != nil {
		return err
	}
	if !u.CheckPassword(req.CurrentPassword) {
		return dErrors.New(dErrors.CodeBadRequest, "Current password is incorrect")
	}
	if err := u.SetPassword(req.NewPassword, requestcontext.Now(ctx)); err != nil {
		return err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return mapStoreError(err)
	}
	s.emit(ctx, audit.ActionPasswordChanged, u.ID)
	return nil
}

func (s *Service) UpdateNotificationPreferences(ctx context.Context, patch models.NotificationPreferencesPatch) (models.NotificationPreferences, error) {
	u, err := s.Me(ctx)
	if err != nil {
		return models.NotificationPreferences{}, err
	}
	patch.Apply(&u.NotificationPreferences)
	u.UpdatedAt = requestcontext.Now(ctx)
	if err := s.users.Update(ctx, u); err != nil {
		return models.NotificationPreferences{}, mapStoreError(err)
	}
	return u.NotificationPreferences, nil
}

func (s *Service) applyProfile(u *models.User, req models.ProfileUpdateRequest) error {
	if req.Email != nil {
		email, err := models.NormalizeEmail(*req.Email)
		if err != nil {
			return err
		}
		req.Email = &email
	}
	return u.ApplyProfile(req)
}

func (s *Service) revokeSessions(ctx context.Context, userID uuid.UUID) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.RemoveAllForUser(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke user sessions",
			"error", err,
			"user_id", userID,
		)
	}
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

func requireAdminOrSelf(ctx context.Context, id uuid.UUID) error {
	principal, ok := requestcontext.Principal(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "Authentication required")
	}
	if principal.Role != domain.RoleAdmin && principal.UserID != id {
		return dErrors.New(dErrors.CodeForbidden, "Permission denied")
	}
	return nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "User not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Duplicate(sentinel.ConflictField(err))
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "user store failure")
	}
}

func sortByName(users []*models.User) []*models.User {
	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i].Name) < strings.ToLower(users[j].Name)
	})
	return users
}
