package intent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the activity log in intent_activities.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a pgx-backed activity log.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, activity *Activity) error {
	payload, err := json.Marshal(activity.Payload)
	if err != nil {
		return fmt.Errorf("marshal activity payload: %w", err)
	}
	query := `
		INSERT INTO intent_activities (customer_id, intent_id, kind, status, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq
	`
	err = s.pool.QueryRow(ctx, query,
		activity.CustomerID,
		activity.IntentID,
		string(activity.Kind),
		activity.Status,
		payload,
		activity.CreatedAt,
	).Scan(&activity.Seq)
	if err != nil {
		return fmt.Errorf("insert intent activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCustomer(ctx context.Context, customerID string) ([]Activity, error) {
	query := `
		SELECT seq, customer_id, intent_id, kind, status, payload, created_at
		FROM intent_activities
		WHERE customer_id = $1
		ORDER BY seq
	`
	rows, err := s.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list intent activities: %w", err)
	}
	activities, err := pgx.CollectRows(rows, scanActivity)
	if err != nil {
		return nil, fmt.Errorf("scan intent activities: %w", err)
	}
	return activities, nil
}

func (s *PostgresStore) Exists(ctx context.Context, customerID, intentID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM intent_activities
			WHERE customer_id = $1 AND intent_id = $2 AND kind = 'created'
		)
	`
	var exists bool
	if err := s.pool.QueryRow(ctx, query, customerID, intentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check intent exists: %w", err)
	}
	return exists, nil
}

func scanActivity(row pgx.CollectableRow) (Activity, error) {
	var (
		a       Activity
		kind    string
		payload []byte
	)
	if err := row.Scan(&a.Seq, &a.CustomerID, &a.IntentID, &kind, &a.Status, &payload, &a.CreatedAt); err != nil {
		return Activity{}, err
	}
	a.Kind = ActivityKind(kind)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &a.Payload); err != nil {
			return Activity{}, fmt.Errorf("decode activity payload: %w", err)
		}
	}
	return a, nil
}
