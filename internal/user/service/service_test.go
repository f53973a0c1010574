package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"frontdesk/internal/audit"
	"frontdesk/internal/user/models"
	"frontdesk/internal/user/store"
	"frontdesk/pkg/domain"
	dErrors "frontdesk/pkg/domain-errors"
	"frontdesk/pkg/testutil"
)

type fakeRevoker struct {
	revoked []uuid.UUID
}

func (f *fakeRevoker) RemoveAllForUser(_ context.Context, userID uuid.UUID) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

type UserServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	revoker *fakeRevoker
	sink    *audit.MemorySink
	service *Service
	admin   *models.User
	alice   *models.User
	bob     *models.User
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.revoker = &fakeRevoker{}
	s.sink = audit.NewMemorySink()
	s.service = New(s.store,
		WithSessionRevoker(s.revoker),
		WithAuditPublisher(audit.NewPublisher(s.sink)),
	)
	s.admin = s.seed("Zed Admin", "admin@example.com", domain.RoleAdmin, "IT")
	s.alice = s.seed("alice", "alice@example.com", domain.RoleEmployee, "Ops")
	s.bob = s.seed("Bob", "bob@example.com", domain.RoleSecurity, "Security")
}

func (s *UserServiceSuite) seed(name, email string, role domain.Role, dept string) *models.User {
	u, err := models.NewUser(models.NewUserParams{
		Name: name, Email: email, Password: "initial-secret", Role: role, Department: dept,
	}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), u))
	return u
}

func (s *UserServiceSuite) as(u *models.User) context.Context {
	return testutil.PrincipalContext(u.ID, u.Role)
}

func (s *UserServiceSuite) TestListSortedByName() {
	users, err := s.service.List(s.as(s.admin))
	s.Require().NoError(err)
	s.Require().Len(users, 3)
	s.Equal("alice", users[0].Name)
	s.Equal("Bob", users[1].Name)
	s.Equal("Zed Admin", users[2].Name)
}

func (s *UserServiceSuite) TestListByRole() {
	s.Run("known role", func() {
		users, err := s.service.ListByRole(s.as(s.admin), "Security")
		s.Require().NoError(err)
		s.Len(users, 1)
	})
	s.Run("unknown role is bad request", func() {
		_, err := s.service.ListByRole(s.as(s.admin), "Janitor")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *UserServiceSuite) TestGet() {
	s.Run("self", func() {
		u, err := s.service.Get(s.as(s.alice), s.alice.ID)
		s.Require().NoError(err)
		s.Equal(s.alice.ID, u.ID)
	})
	s.Run("admin reads anyone", func() {
		_, err := s.service.Get(s.as(s.admin), s.alice.ID)
		s.NoError(err)
	})
	s.Run("other user is forbidden", func() {
		_, err := s.service.Get(s.as(s.bob), s.alice.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
	s.Run("missing user", func() {
		_, err := s.service.Get(s.as(s.admin), uuid.New())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *UserServiceSuite) TestCreate() {
	s.Run("creates with default role", func() {
		u, err := s.service.Create(s.as(s.admin), models.CreateUserRequest{
			Name: "Carol", Email: "carol@example.com", Password: "carol-secret", Department: "Lobby",
		})
		s.Require().NoError(err)
		s.Equal(domain.RoleEmployee, u.Role)
	})
	s.Run("email in use", func() {
		_, err := s.service.Create(s.as(s.admin), models.CreateUserRequest{
			Name: "Dup", Email: "ALICE@example.com", Password: "dup-secret-1", Department: "Ops",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal("Email already in use", dErrors.MessageOf(err))
	})
	s.Run("validation", func() {
		_, err := s.service.Create(s.as(s.admin), models.CreateUserRequest{Email: "x@example.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *UserServiceSuite) TestUpdate() {
	s.Run("non admin cannot change role", func() {
		role := domain.RoleAdmin
		_, err := s.service.Update(s.as(s.alice), s.alice.ID, models.UpdateUserRequest{Role: &role})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Equal("Only admins can change roles", dErrors.MessageOf(err))
	})

	s.Run("self updates profile fields", func() {
		phone := "555-0199"
		u, err := s.service.Update(s.as(s.alice), s.alice.ID, models.UpdateUserRequest{
			ProfileUpdateRequest: models.ProfileUpdateRequest{Phone: &phone},
		})
		s.Require().NoError(err)
		s.Equal("555-0199", u.Phone)
	})

	s.Run("changing to a taken email is duplicate", func() {
		email := "bob@example.com"
		_, err := s.service.Update(s.as(s.alice), s.alice.ID, models.UpdateUserRequest{
			ProfileUpdateRequest: models.ProfileUpdateRequest{Email: &email},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicate))
	})

	s.Run("admin changes role and deactivates", func() {
		role := domain.RoleReception
		status := models.StatusInactive
		u, err := s.service.Update(s.as(s.admin), s.alice.ID, models.UpdateUserRequest{Role: &role, Status: &status})
		s.Require().NoError(err)
		s.Equal(domain.RoleReception, u.Role)
		s.Equal(models.StatusInactive, u.Status)
		s.Contains(s.revoker.revoked, s.alice.ID)
	})
}

func (s *UserServiceSuite) TestDeleteRevokesSessions() {
	s.Require().NoError(s.service.Delete(s.as(s.admin), s.bob.ID))
	s.Contains(s.revoker.revoked, s.bob.ID)

	_, err := s.service.FindByID(context.Background(), s.bob.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.service.Delete(s.as(s.admin), s.bob.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *UserServiceSuite) TestChangePassword() {
	ctx := s.as(s.alice)
	s.Run("wrong current password", func() {
		err := s.service.ChangePassword(ctx, models.ChangePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "brand-new-1"})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
	s.Run("missing fields", func() {
		err := s.service.ChangePassword(ctx, models.ChangePasswordRequest{})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
	s.Run("success", func() {
		s.Require().NoError(s.service.ChangePassword(ctx, models.ChangePasswordRequest{CurrentPassword: "initial-secret", NewPassword: "brand-new-1"}))
		u, err := s.service.Me(ctx)
		s.Require().NoError(err)
		s.True(u.CheckPassword("brand-new-1"))
	})
}

func (s *UserServiceSuite) TestNotificationPreferencesMerge() {
	on := true
	prefs, err := s.service.UpdateNotificationPreferences(s.as(s.alice), models.NotificationPreferencesPatch{SMS: &on})
	s.Require().NoError(err)
	s.True(prefs.Email)
	s.True(prefs.SMS)
	s.False(prefs.Slack)
}

func (s *UserServiceSuite) TestActiveByRoleSkipsInactive() {
	inactive := s.seed("Sam", "sam@example.com", domain.RoleSecurity, "Security")
	inactive.Status = models.StatusInactive
	s.Require().NoError(s.store.Update(context.Background(), inactive))

	users, err := s.service.ActiveByRole(context.Background(), domain.RoleSecurity)
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal(s.bob.ID, users[0].ID)
}
