package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"frontdesk/internal/keys/models"
	"frontdesk/internal/platform/postgres"
	"frontdesk/pkg/domain"
	"frontdesk/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const keyColumns = `id, key_name, key_number, area, status, assigned_to, checkout_time, return_time,
	expected_return_time, access_level, authorized_roles, location, notes, created_by, updated_by,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, k *models.Key) error {
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO keys (`+keyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		k.ID, k.KeyName, k.KeyNumber, k.Area, string(k.Status), k.AssignedTo, k.CheckoutTime, k.ReturnTime,
		k.ExpectedReturnTime, string(k.AccessLevel), pq.Array(roleStrings(k.AuthorizedRoles)), k.Location, k.Notes,
		k.CreatedBy, k.UpdatedBy, k.CreatedAt, k.UpdatedAt,
	)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return sentinel.Conflict(numberField)
		}
		return fmt.Errorf("insert key: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, k *models.Key) error {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE keys SET
			key_name = $2, key_number = $3, area = $4, status = $5, assigned_to = $6, checkout_time = $7,
			return_time = $8, expected_return_time = $9, access_level = $10, authorized_roles = $11,
			location = $12, notes = $13, updated_by = $14, updated_at = $15
		WHERE id = $1`,
		k.ID, k.KeyName, k.KeyNumber, k.Area, string(k.Status), k.AssignedTo, k.CheckoutTime,
		k.ReturnTime, k.ExpectedReturnTime, string(k.AccessLevel), pq.Array(roleStrings(k.AuthorizedRoles)),
		k.Location, k.Notes, k.UpdatedBy, k.UpdatedAt,
	)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return sentinel.Conflict(numberField)
		}
		return fmt.Errorf("update key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Key, error) {
	return s.findOne(ctx, `SELECT `+keyColumns+` FROM keys WHERE id = $1`, id)
}

// Execute locks the row with SELECT ... FOR UPDATE for the life of the transaction.
func (s *PostgresStore) Execute(ctx context.Context, id uuid.UUID, fn Mutation) (*models.Key, error) {
	var out *models.Key
	err := postgres.RunInTx(ctx, s.db, func(ctx context.Context) error {
		k, err := s.findOne(ctx, `SELECT `+keyColumns+` FROM keys WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}
		if err := fn(k); err != nil {
			return err
		}
		if err := s.Update(ctx, k); err != nil {
			return err
		}
		out = k
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) DeleteIf(ctx context.Context, id uuid.UUID, guard func(*models.Key) error) error {
	return postgres.RunInTx(ctx, s.db, func(ctx context.Context) error {
		k, err := s.findOne(ctx, `SELECT `+keyColumns+` FROM keys WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}
		if err := guard(k); err != nil {
			return err
		}
		if _, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM keys WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete key: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Key, error) {
	return s.queryMany(ctx, `SELECT `+keyColumns+` FROM keys ORDER BY key_name`)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.Key, error) {
	return s.queryMany(ctx, `SELECT `+keyColumns+` FROM keys WHERE status = $1 ORDER BY key_name`, string(status))
}

func (s *PostgresStore) ListByAssignee(ctx context.Context, assignee uuid.UUID) ([]*models.Key, error) {
	return s.queryMany(ctx, `SELECT `+keyColumns+` FROM keys WHERE assigned_to = $1 ORDER BY checkout_time DESC`, assignee)
}

func (s *PostgresStore) ListByAccessLevel(ctx context.Context, level models.AccessLevel) ([]*models.Key, error) {
	return s.queryMany(ctx, `SELECT `+keyColumns+` FROM keys WHERE access_level = $1 ORDER BY key_name`, string(level))
}

func (s *PostgresStore) ListOverdue(ctx context.Context, now time.Time) ([]*models.Key, error) {
	return s.queryMany(ctx, `
		SELECT `+keyColumns+` FROM keys
		WHERE status = $1 AND expected_return_time < $2
		ORDER BY expected_return_time`, string(models.StatusCheckedOut), now)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKey(row rowScanner) (*models.Key, error) {
	var (
		k                                      models.Key
		status, level                          string
		roles                                  pq.StringArray
		assignedTo, createdBy, updatedBy       uuid.NullUUID
		checkoutTime, returnTime, expectedTime sql.NullTime
	)
	err := row.Scan(
		&k.ID, &k.KeyName, &k.KeyNumber, &k.Area, &status, &assignedTo, &checkoutTime, &returnTime,
		&expectedTime, &level, &roles, &k.Location, &k.Notes, &createdBy, &updatedBy,
		&k.CreatedAt, &k.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	k.Status = models.Status(status)
	k.AccessLevel = models.AccessLevel(level)
	k.AuthorizedRoles = make([]domain.Role, 0, len(roles))
	for _, r := range roles {
		k.AuthorizedRoles = append(k.AuthorizedRoles, domain.Role(r))
	}
	k.AssignedTo = nullUUID(assignedTo)
	k.UpdatedBy = nullUUID(updatedBy)
	k.CreatedBy = createdBy.UUID
	k.CheckoutTime = nullTime(checkoutTime)
	k.ReturnTime = nullTime(returnTime)
	k.ExpectedReturnTime = nullTime(expectedTime)
	return &k, nil
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (*models.Key, error) {
	k, err := scanKey(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find key: %w", err)
	}
	return k, nil
}

func (s *PostgresStore) queryMany(ctx context.Context, query string, args ...any) ([]*models.Key, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var out []*models.Key
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func roleStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func nullUUID(v uuid.NullUUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := v.UUID
	return &id
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
