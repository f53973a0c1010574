package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"frontdesk/internal/platform/postgres"
	"frontdesk/internal/shipment/models"
	"frontdesk/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const shipmentColumns = `id, tracking_number, carrier, sender, recipient_id, type, status, received_time,
	delivered_time, notes, handling_instructions, weight, length, width, height, photo_url,
	signature_url, created_by, updated_by, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, sh *models.Shipment) error {
	length, width, height := dimensionArgs(sh.Dimensions)
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO shipments (`+shipmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		sh.ID, sh.TrackingNumber, sh.Carrier, sh.Sender, sh.Recipient, string(sh.Type), string(sh.Status), sh.ReceivedTime,
		sh.DeliveredTime, sh.Notes, sh.HandlingInstructions, sh.Weight, length, width, height, sh.PhotoURL,
		sh.SignatureURL, sh.CreatedBy, sh.UpdatedBy, sh.CreatedAt, sh.UpdatedAt,
	)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return sentinel.Conflict(trackingField)
		}
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, sh *models.Shipment) error {
	length, width, height := dimensionArgs(sh.Dimensions)
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE shipments SET
			tracking_number = $2, carrier = $3, sender = $4, recipient_id = $5, type = $6, status = $7,
			received_time = $8, delivered_time = $9, notes = $10, handling_instructions = $11, weight = $12,
			length = $13, width = $14, height = $15, photo_url = $16, signature_url = $17, updated_by = $18,
			updated_at = $19
		WHERE id = $1`,
		sh.ID, sh.TrackingNumber, sh.Carrier, sh.Sender, sh.Recipient, string(sh.Type), string(sh.Status),
		sh.ReceivedTime, sh.DeliveredTime, sh.Notes, sh.HandlingInstructions, sh.Weight,
		length, width, height, sh.PhotoURL, sh.SignatureURL, sh.UpdatedBy,
		sh.UpdatedAt,
	)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return sentinel.Conflict(trackingField)
		}
		return fmt.Errorf("update shipment: %w", err)
	}
	return expectOne(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shipment: %w", err)
	}
	return expectOne(res)
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	sh, err := scanShipment(postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find shipment: %w", err)
	}
	return sh, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Shipment, error) {
	return s.queryMany(ctx, `SELECT `+shipmentColumns+` FROM shipments ORDER BY received_time DESC`)
}

func (s *PostgresStore) ListByRecipient(ctx context.Context, recipient uuid.UUID) ([]*models.Shipment, error) {
	return s.queryMany(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE recipient_id = $1 ORDER BY received_time DESC`, recipient)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.Shipment, error) {
	return s.queryMany(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE status = $1 ORDER BY received_time DESC`, string(status))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (*models.Shipment, error) {
	var (
		sh                            models.Shipment
		typ, status                   string
		delivered                     sql.NullTime
		weight, length, width, height sql.NullFloat64
		createdBy, updatedBy          uuid.NullUUID
	)
	err := row.Scan(
		&sh.ID, &sh.TrackingNumber, &sh.Carrier, &sh.Sender, &sh.Recipient, &typ, &status, &sh.ReceivedTime,
		&delivered, &sh.Notes, &sh.HandlingInstructions, &weight, &length, &width, &height, &sh.PhotoURL,
		&sh.SignatureURL, &createdBy, &updatedBy, &sh.CreatedAt, &sh.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sh.Type = models.Type(typ)
	sh.Status = models.Status(status)
	if delivered.Valid {
		t := delivered.Time
		sh.DeliveredTime = &t
	}
	if weight.Valid {
		w := weight.Float64
		sh.Weight = &w
	}
	if length.Valid || width.Valid || height.Valid {
		sh.Dimensions = &models.Dimensions{Length: length.Float64, Width: width.Float64, Height: height.Float64}
	}
	sh.CreatedBy = createdBy.UUID
	if updatedBy.Valid {
		u := updatedBy.UUID
		sh.UpdatedBy = &u
	}
	return &sh, nil
}

func (s *PostgresStore) queryMany(ctx context.Context, query string, args ...any) ([]*models.Shipment, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	var out []*models.Shipment
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func dimensionArgs(d *models.Dimensions) (length, width, height *float64) {
	if d == nil {
		return nil, nil, nil
	}
	return &d.Length, &d.Width, &d.Height
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
