package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"frontdesk/internal/platform/postgres"
	"frontdesk/internal/screening"
	"frontdesk/internal/visitor/models"
	"frontdesk/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const visitorColumns = `id, name, company, email, phone, host_id, purpose, status, visit_date,
	check_in_time, check_out_time, photo_url, id_scan_url, notes, sentiment, security_concerns,
	watchlist_match, badge_printed, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, v *models.Visitor) error {
	sentiment, err := marshalSentiment(v.AIAnalysis.Sentiment)
	if err != nil {
		return err
	}
	_, err = postgres.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO visitors (`+visitorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		v.ID, v.Name, v.Company, v.Email, v.Phone, v.Host, v.Purpose, string(v.Status), v.VisitDate,
		v.CheckInTime, v.CheckOutTime, v.PhotoURL, v.IDScanURL, v.Notes, sentiment, pq.Array(concerns(v)),
		v.AIAnalysis.WatchlistMatch, v.BadgePrinted, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert visitor: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, v *models.Visitor) error {
	sentiment, err := marshalSentiment(v.AIAnalysis.Sentiment)
	if err != nil {
		return err
	}
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE visitors SET
			name = $2, company = $3, email = $4, phone = $5, host_id = $6, purpose = $7, status = $8,
			visit_date = $9, check_in_time = $10, check_out_time = $11, photo_url = $12, id_scan_url = $13,
			notes = $14, sentiment = $15, security_concerns = $16, watchlist_match = $17, badge_printed = $18,
			updated_at = $19
		WHERE id = $1`,
		v.ID, v.Name, v.Company, v.Email, v.Phone, v.Host, v.Purpose, string(v.Status),
		v.VisitDate, v.CheckInTime, v.CheckOutTime, v.PhotoURL, v.IDScanURL,
		v.Notes, sentiment, pq.Array(concerns(v)), v.AIAnalysis.WatchlistMatch, v.BadgePrinted,
		v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update visitor: %w", err)
	}
	return expectOne(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM visitors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete visitor: %w", err)
	}
	return expectOne(res)
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error) {
	row := postgres.Conn(ctx, s.db).QueryRowContext(ctx, `SELECT `+visitorColumns+` FROM visitors WHERE id = $1`, id)
	v, err := scanVisitor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find visitor: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Visitor, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, `SELECT `+visitorColumns+` FROM visitors ORDER BY visit_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}
	defer rows.Close()

	var out []*models.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisitor(row rowScanner) (*models.Visitor, error) {
	var (
		v                 models.Visitor
		status            string
		checkIn, checkOut sql.NullTime
		sentiment         []byte
		concerns          []string
	)
	err := row.Scan(
		&v.ID, &v.Name, &v.Company, &v.Email, &v.Phone, &v.Host, &v.Purpose, &status, &v.VisitDate,
		&checkIn, &checkOut, &v.PhotoURL, &v.IDScanURL, &v.Notes, &sentiment, pq.Array(&concerns),
		&v.AIAnalysis.WatchlistMatch, &v.BadgePrinted, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Status = models.Status(status)
	v.CheckInTime = nullTime(checkIn)
	v.CheckOutTime = nullTime(checkOut)
	if concerns == nil {
		concerns = []string{}
	}
	v.AIAnalysis.SecurityConcerns = concerns
	if len(sentiment) > 0 {
		var s screening.Sentiment
		if err := json.Unmarshal(sentiment, &s); err != nil {
			return nil, fmt.Errorf("decode sentiment: %w", err)
		}
		v.AIAnalysis.Sentiment = &s
	}
	return &v, nil
}

func marshalSentiment(s *screening.Sentiment) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode sentiment: %w", err)
	}
	return b, nil
}

func concerns(v *models.Visitor) []string {
	if v.AIAnalysis.SecurityConcerns == nil {
		return []string{}
	}
	return v.AIAnalysis.SecurityConcerns
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	ts := t.Time
	return &ts
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
