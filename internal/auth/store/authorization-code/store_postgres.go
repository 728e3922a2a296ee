package authorizationcode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"scp-gateway/internal/auth/models"
	"scp-gateway/pkg/platform/sentinel"
	"scp-gateway/pkg/platform/tx"
)

// PostgresStore persists authorization codes in the auth_codes table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed authorization code store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, authCode *models.AuthorizationCodeRecord) error {
	query := `
		INSERT INTO auth_codes (code, customer_email, customer_id, client_id, scopes, code_challenge, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.Q(ctx, s.db).ExecContext(ctx, query,
		authCode.Code,
		authCode.CustomerEmail,
		authCode.CustomerID,
		authCode.ClientID,
		pq.Array(authCode.Scopes),
		authCode.CodeChallenge,
		authCode.ExpiresAt,
		authCode.Used,
		authCode.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert authorization code: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindUnused(ctx context.Context, code string) (*models.AuthorizationCodeRecord, error) {
	query := `
		SELECT code, customer_email, customer_id, client_id, scopes, code_challenge, expires_at, used, created_at
		FROM auth_codes
		WHERE code = $1 AND used = FALSE
	`
	var record models.AuthorizationCodeRecord
	err := tx.Q(ctx, s.db).QueryRowContext(ctx, query, code).Scan(
		&record.Code,
		&record.CustomerEmail,
		&record.CustomerID,
		&record.ClientID,
		pq.Array(&record.Scopes),
		&record.CodeChallenge,
		&record.ExpiresAt,
		&record.Used,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find authorization code: %w", err)
	}
	return &record, nil
}

// MarkUsed is a conditional update; zero rows affected means the code was
// already redeemed or never existed.
func (s *PostgresStore) MarkUsed(ctx context.Context, code string) error {
	q := tx.Q(ctx, s.db)
	res, err := q.ExecContext(ctx, `UPDATE auth_codes SET used = TRUE WHERE code = $1 AND used = FALSE`, code)
	if err != nil {
		return fmt.Errorf("mark authorization code used: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark authorization code used: %w", err)
	}
	if rows == 1 {
		return nil
	}

	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM auth_codes WHERE code = $1)`, code).Scan(&exists); err != nil {
		return fmt.Errorf("check authorization code: %w", err)
	}
	if !exists {
		return fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
	}
	return fmt.Errorf("authorization code already used: %w", sentinel.ErrAlreadyUsed)
}

func (s *PostgresStore) DeleteExpiredCodes(ctx context.Context, now time.Time) (int, error) {
	res, err := tx.Q(ctx, s.db).ExecContext(ctx, `DELETE FROM auth_codes WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired authorization codes: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired authorization codes: %w", err)
	}
	return int(rows), nil
}
