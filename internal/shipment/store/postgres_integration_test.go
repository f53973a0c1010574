//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"frontdesk/internal/shipment/models"
	"frontdesk/internal/shipment/store"
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
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "shipments"))
}

func (s *PostgresStoreSuite) newShipment(tracking string, received time.Time) *models.Shipment {
	now := time.Now().UTC().Truncate(time.Microsecond)
	weight := 2.5
	return &models.Shipment{
		ID:             uuid.New(),
		TrackingNumber: tracking,
		Carrier:        "FedEx",
		Sender:         "Parts Co",
		Recipient:      uuid.New(),
		Type:           models.TypePallet,
		Status:         models.StatusReceived,
		ReceivedTime:   received.UTC().Truncate(time.Microsecond),
		Weight:         &weight,
		Dimensions:     &models.Dimensions{Length: 120, Width: 80, Height: 100},
		CreatedBy:      uuid.New(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	sh := s.newShipment("PG-1", time.Now())
	s.Require().NoError(s.store.Create(ctx, sh))

	got, err := s.store.FindByID(ctx, sh.ID)
	s.Require().NoError(err)
	s.Equal(sh.TrackingNumber, got.TrackingNumber)
	s.Require().NotNil(got.Weight)
	s.InDelta(2.5, *got.Weight, 1e-9)
	s.Equal(sh.Dimensions, got.Dimensions)
	s.Nil(got.DeliveredTime)
	s.Nil(got.UpdatedBy)
}

func (s *PostgresStoreSuite) TestDuplicateTrackingNumber() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newShipment("PG-2", time.Now())))
	err := s.store.Create(ctx, s.newShipment("PG-2", time.Now()))
	s.ErrorIs(err, sentinel.ErrConflict)
	s.Equal("trackingNumber", sentinel.ConflictField(err))
}

func (s *PostgresStoreSuite) TestDeliveredPersists() {
	ctx := context.Background()
	sh := s.newShipment("PG-3", time.Now())
	s.Require().NoError(s.store.Create(ctx, sh))

	sh.ApplyDelivered("sig.png", uuid.New(), time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Update(ctx, sh))

	delivered, err := s.store.ListByStatus(ctx, models.StatusDelivered)
	s.Require().NoError(err)
	s.Require().Len(delivered, 1)
	s.NotNil(delivered[0].DeliveredTime)
	s.Equal("sig.png", delivered[0].SignatureURL)
	s.NotNil(delivered[0].UpdatedBy)
}

func (s *PostgresStoreSuite) TestListNewestFirst() {
	ctx := context.Background()
	older := s.newShipment("PG-4", time.Now().Add(-time.Hour))
	newer := s.newShipment("PG-5", time.Now())
	s.Require().NoError(s.store.Create(ctx, older))
	s.Require().NoError(s.store.Create(ctx, newer))

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(newer.ID, all[0].ID)
}
