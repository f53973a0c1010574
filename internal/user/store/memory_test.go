package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"frontdesk/internal/user/models"
	"frontdesk/pkg/domain"
	"frontdesk/pkg/platform/sentinel"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemory
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func newUser(email string, role domain.Role, dept string) *models.User {
	now := time.Now()
	return &models.User{
		ID:         uuid.New(),
		Name:       "User " + email,
		Email:      email,
		Role:       role,
		Department: dept,
		Status:     models.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *InMemoryUserStoreSuite) TestLookup() {
	ctx := context.Background()
	u := newUser("jane@example.com", domain.RoleEmployee, "Ops")
	u.VerificationToken = "verify-1"
	u.ResetPasswordToken = "reset-1"
	s.Require().NoError(s.store.Create(ctx, u))

	s.Run("by id", func() {
		found, err := s.store.FindByID(ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u.Email, found.Email)
	})

	s.Run("by email", func() {
		found, err := s.store.FindByEmail(ctx, "jane@example.com")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("by tokens", func() {
		found, err := s.store.FindByVerificationToken(ctx, "verify-1")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)

		found, err = s.store.FindByResetToken(ctx, "reset-1")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("empty token never matches", func() {
		_, err := s.store.FindByResetToken(ctx, "")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("missing id", func() {
		_, err := s.store.FindByID(ctx, uuid.New())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned records are copies", func() {
		found, err := s.store.FindByID(ctx, u.ID)
		s.Require().NoError(err)
		found.Name = "mutated"

		again, err := s.store.FindByID(ctx, u.ID)
		s.Require().NoError(err)
		s.NotEqual("mutated", again.Name)
	})
}

func (s *InMemoryUserStoreSuite) TestEmailUniqueness() {
	ctx := context.Background()
	a := newUser("a@example.com", domain.RoleEmployee, "Ops")
	b := newUser("b@example.com", domain.RoleEmployee, "Ops")
	s.Require().NoError(s.store.Create(ctx, a))
	s.Require().NoError(s.store.Create(ctx, b))

	s.Run("create collides", func() {
		err := s.store.Create(ctx, newUser("a@example.com", domain.RoleAdmin, "IT"))
		s.ErrorIs(err, sentinel.ErrConflict)
		s.Equal("email", sentinel.ConflictField(err))
	})

	s.Run("update collides", func() {
		b.Email = "a@example.com"
		s.ErrorIs(s.store.Update(ctx, b), sentinel.ErrConflict)
	})

	s.Run("update frees old email", func() {
		a.Email = "a2@example.com"
		s.Require().NoError(s.store.Update(ctx, a))
		s.Require().NoError(s.store.Create(ctx, newUser("a@example.com", domain.RoleEmployee, "Ops")))
	})
}

func (s *InMemoryUserStoreSuite) TestFilters() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newUser("s1@example.com", domain.RoleSecurity, "Security")))
	s.Require().NoError(s.store.Create(ctx, newUser("s2@example.com", domain.RoleSecurity, "Lobby")))
	s.Require().NoError(s.store.Create(ctx, newUser("e1@example.com", domain.RoleEmployee, "Lobby")))

	security, err := s.store.ListByRole(ctx, domain.RoleSecurity)
	s.Require().NoError(err)
	s.Len(security, 2)

	lobby, err := s.store.ListByDepartment(ctx, "Lobby")
	s.Require().NoError(err)
	s.Len(lobby, 2)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *InMemoryUserStoreSuite) TestDelete() {
	ctx := context.Background()
	u := newUser("gone@example.com", domain.RoleEmployee, "Ops")
	s.Require().NoError(s.store.Create(ctx, u))

	s.Require().NoError(s.store.Delete(ctx, u.ID))
	_, err := s.store.FindByEmail(ctx, u.Email)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, u.ID), sentinel.ErrNotFound)
}
