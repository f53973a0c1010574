//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"frontdesk/internal/user/models"
	"frontdesk/internal/user/store"
	"frontdesk/pkg/domain"
	"frontdesk/pkg/platform/sentinel"
	"frontdesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "users"))
}

func (s *PostgresStoreSuite) newUser(email string) *models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.User{
		ID:                      uuid.New(),
		Name:                    "Test " + email,
		Email:                   email,
		PasswordHash:            "hash",
		Role:                    domain.RoleSecurity,
		Department:              "Security",
		Status:                  models.StatusActive,
		NotificationPreferences: models.DefaultNotificationPreferences(),
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	u := s.newUser("round@example.com")
	u.IssueResetToken("reset-token", u.CreatedAt, time.Hour)
	s.Require().NoError(s.store.Create(ctx, u))

	found, err := s.store.FindByResetToken(ctx, "reset-token")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)
	s.Equal(domain.RoleSecurity, found.Role)
	s.True(found.NotificationPreferences.Email)
	s.Require().NotNil(found.ResetPasswordExpires)
	s.WithinDuration(*u.ResetPasswordExpires, *found.ResetPasswordExpires, time.Millisecond)

	found.ClearResetToken(time.Now())
	s.Require().NoError(s.store.Update(ctx, found))
	_, err = s.store.FindByResetToken(ctx, "reset-token")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateEmail() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newUser("dup@example.com")))

	err := s.store.Create(ctx, s.newUser("dup@example.com"))
	s.ErrorIs(err, sentinel.ErrConflict)
	s.Equal("email", sentinel.ConflictField(err))
}

func (s *PostgresStoreSuite) TestListByRole() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newUser("s1@example.com")))
	other := s.newUser("e1@example.com")
	other.Role = domain.RoleEmployee
	s.Require().NoError(s.store.Create(ctx, other))

	users, err := s.store.ListByRole(ctx, domain.RoleSecurity)
	s.Require().NoError(err)
	s.Len(users, 1)
}

func (s *PostgresStoreSuite) TestDeleteMissing() {
	s.ErrorIs(s.store.Delete(context.Background(), uuid.New()), sentinel.ErrNotFound)
}
