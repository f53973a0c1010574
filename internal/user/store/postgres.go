package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"frontdesk/internal/platform/postgres"
	"frontdesk/internal/user/models"
	"frontdesk/pkg/domain"
	"frontdesk/pkg/platform/sentinel"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, name, email, password_hash, role, department, status, phone, profile_picture,
	notify_email, notify_sms, notify_slack, notify_teams, slack_user_id, teams_user_id,
	email_verified, verification_token, reset_password_token, reset_password_expires,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.Department, string(u.Status), u.Phone, u.ProfilePicture,
		u.NotificationPreferences.Email, u.NotificationPreferences.SMS, u.NotificationPreferences.Slack, u.NotificationPreferences.Teams,
		u.SlackUserID, u.TeamsUserID, u.EmailVerified, nullString(u.VerificationToken), nullString(u.ResetPasswordToken),
		u.ResetPasswordExpires, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return sentinel.Conflict("email")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, u *models.User) error {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE users SET
			name = $2, email = $3, password_hash = $4, role = $5, department = $6, status = $7,
			phone = $8, profile_picture = $9, notify_email = $10, notify_sms = $11, notify_slack = $12,
			notify_teams = $13, slack_user_id = $14, teams_user_id = $15, email_verified = $16,
			verification_token = $17, reset_password_token = $18, reset_password_expires = $19, updated_at = $20
		WHERE id = $1`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.Department, string(u.Status),
		u.Phone, u.ProfilePicture, u.NotificationPreferences.Email, u.NotificationPreferences.SMS, u.NotificationPreferences.Slack,
		u.NotificationPreferences.Teams, u.SlackUserID, u.TeamsUserID, u.EmailVerified,
		nullString(u.VerificationToken), nullString(u.ResetPasswordToken), u.ResetPasswordExpires, u.UpdatedAt,
	)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return sentinel.Conflict("email")
		}
		return fmt.Errorf("update user: %w", err)
	}
	return expectOne(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectOne(res)
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *PostgresStore) FindByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token)
}

func (s *PostgresStore) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE reset_password_token = $1`, token)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.User, error) {
	return s.queryMany(ctx, `SELECT `+userColumns+` FROM users`)
}

func (s *PostgresStore) ListByRole(ctx context.Context, role domain.Role) ([]*models.User, error) {
	return s.queryMany(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1`, string(role))
}

func (s *PostgresStore) ListByDepartment(ctx context.Context, department string) ([]*models.User, error) {
	return s.queryMany(ctx, `SELECT `+userColumns+` FROM users WHERE department = $1`, department)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                   models.User
		role, status        string
		verification, reset sql.NullString
		resetExpires        sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Department, &status, &u.Phone, &u.ProfilePicture,
		&u.NotificationPreferences.Email, &u.NotificationPreferences.SMS, &u.NotificationPreferences.Slack, &u.NotificationPreferences.Teams,
		&u.SlackUserID, &u.TeamsUserID, &u.EmailVerified, &verification, &reset, &resetExpires,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.Status = models.Status(status)
	u.VerificationToken = verification.String
	u.ResetPasswordToken = reset.String
	if resetExpires.Valid {
		t := resetExpires.Time
		u.ResetPasswordExpires = &t
	}
	return &u, nil
}

func (s *PostgresStore) queryOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	u, err := scanUser(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) queryMany(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
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

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
