//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"frontdesk/internal/keys/models"
	"frontdesk/internal/keys/store"
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
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "keys"))
}

func (s *PostgresStoreSuite) newKey(name, number string) *models.Key {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Key{
		ID:              uuid.New(),
		KeyName:         name,
		KeyNumber:       number,
		Area:            "Data Center",
		Status:          models.StatusAvailable,
		AccessLevel:     models.AccessHigh,
		AuthorizedRoles: []domain.Role{domain.RoleSecurity, domain.RoleAdmin},
		CreatedBy:       uuid.New(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *PostgresStoreSuite) TestRoundTripWithRoles() {
	ctx := context.Background()
	k := s.newKey("Cage", "DC-1")
	s.Require().NoError(s.store.Create(ctx, k))

	got, err := s.store.FindByID(ctx, k.ID)
	s.Require().NoError(err)
	s.Equal(k.AuthorizedRoles, got.AuthorizedRoles)
	s.Nil(got.AssignedTo)
	s.Nil(got.UpdatedBy)

	err = s.store.Create(ctx, s.newKey("Other", "DC-1"))
	s.ErrorIs(err, sentinel.ErrConflict)
	s.Equal("keyNumber", sentinel.ConflictField(err))
}

func (s *PostgresStoreSuite) TestExecuteSerializesCheckout() {
	ctx := context.Background()
	k := s.newKey("Roof", "R-1")
	s.Require().NoError(s.store.Create(ctx, k))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, k.ID, func(k *models.Key) error {
				if err := k.CanCheckout(domain.RoleSecurity); err != nil {
					return err
				}
				k.ApplyCheckout(uuid.New(), uuid.New(), nil, time.Now().UTC())
				return nil
			})
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), wins.Load())

	got, err := s.store.FindByID(ctx, k.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCheckedOut, got.Status)
	s.NotNil(got.AssignedTo)
}

func (s *PostgresStoreSuite) TestOverdueAndOrdering() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	holder := uuid.New()

	b, a := s.newKey("B door", "B-1"), s.newKey("A door", "A-1")
	past := now.Add(-time.Hour)
	b.ApplyCheckout(holder, holder, &past, now.Add(-3*time.Hour))
	a.ApplyCheckout(holder, holder, nil, now.Add(-time.Hour))
	s.Require().NoError(s.store.Create(ctx, b))
	s.Require().NoError(s.store.Create(ctx, a))

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Equal([]string{"A door", "B door"}, []string{all[0].KeyName, all[1].KeyName})

	mine, err := s.store.ListByAssignee(ctx, holder)
	s.Require().NoError(err)
	s.Equal(a.ID, mine[0].ID, "latest checkout first")

	overdue, err := s.store.ListOverdue(ctx, now)
	s.Require().NoError(err)
	s.Require().Len(overdue, 1)
	s.Equal(b.ID, overdue[0].ID)
}

func (s *PostgresStoreSuite) TestDeleteIf() {
	ctx := context.Background()
	k := s.newKey("Vault", "V-1")
	s.Require().NoError(s.store.Create(ctx, k))

	s.Require().NoError(s.store.DeleteIf(ctx, k.ID, func(k *models.Key) error { return k.CanDelete() }))
	s.ErrorIs(s.store.DeleteIf(ctx, k.ID, func(*models.Key) error { return nil }), sentinel.ErrNotFound)
}
