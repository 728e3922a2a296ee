package refreshtoken

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

// PostgresStore persists refresh tokens in the refresh_tokens table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed refresh token store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, token *models.RefreshTokenRecord) error {
	query := `
		INSERT INTO refresh_tokens (token, customer_email, customer_id, client_id, scopes, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := tx.Q(ctx, s.db).QueryRowContext(ctx, query,
		token.Token,
		token.CustomerEmail,
		token.CustomerID,
		token.ClientID,
		pq.Array(token.Scopes),
		token.ExpiresAt,
		token.CreatedAt,
	).Scan(&token.ID)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, token string) (*models.RefreshTokenRecord, error) {
	query := `
		SELECT id, token, customer_email, customer_id, client_id, scopes, expires_at, created_at, last_used
		FROM refresh_tokens
		WHERE token = $1
	`
	var (
		record   models.RefreshTokenRecord
		lastUsed sql.NullTime
	)
	err := tx.Q(ctx, s.db).QueryRowContext(ctx, query, token).Scan(
		&record.ID,
		&record.Token,
		&record.CustomerEmail,
		&record.CustomerID,
		&record.ClientID,
		pq.Array(&record.Scopes),
		&record.ExpiresAt,
		&record.CreatedAt,
		&lastUsed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		record.LastUsed = &t
	}
	return &record, nil
}

// Rotate is keyed on the old value, so a concurrent rotation that already
// replaced it affects zero rows.
func (s *PostgresStore) Rotate(ctx context.Context, oldToken, newToken string, now time.Time) error {
	res, err := tx.Q(ctx, s.db).ExecContext(ctx,
		`UPDATE refresh_tokens SET token = $2, last_used = $3 WHERE token = $1`,
		oldToken, newToken, now)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteByToken(ctx context.Context, token string) error {
	if _, err := tx.Q(ctx, s.db).ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	res, err := tx.Q(ctx, s.db).ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return int(rows), nil
}
