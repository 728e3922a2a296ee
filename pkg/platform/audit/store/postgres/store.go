// Package postgres keeps audit events in the durable store when no Kafka
// brokers are configured.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	audit "scp-gateway/pkg/platform/audit"
	"scp-gateway/pkg/platform/tx"
)

// Store appends to audit_events. Writes join a transaction bound to ctx.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	const query = `
		INSERT INTO audit_events (
			id, category, occurred_at, customer_id, email, action, requesting_party,
			auth_request_id, scopes, decision, reason, request_id, ip, device
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING`
	scopes := event.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	_, err := tx.Q(ctx, s.db).ExecContext(ctx, query,
		event.ID,
		string(event.Category),
		event.Timestamp,
		event.CustomerID,
		event.Email,
		event.Action,
		event.RequestingParty,
		event.AuthRequestID,
		pq.Array(scopes),
		event.Decision,
		event.Reason,
		event.RequestID,
		event.IP,
		event.Device,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByCustomer returns a customer's events oldest first.
func (s *Store) ListByCustomer(ctx context.Context, customerID string) ([]audit.Event, error) {
	const query = `
		SELECT id, category, occurred_at, customer_id, email, action, requesting_party,
			auth_request_id, scopes, decision, reason, request_id, ip, device
		FROM audit_events
		WHERE customer_id = $1
		ORDER BY occurred_at, id`
	rows, err := tx.Q(ctx, s.db).QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := []audit.Event{}
	for rows.Next() {
		var (
			e        audit.Event
			category string
		)
		if err := rows.Scan(
			&e.ID, &category, &e.Timestamp, &e.CustomerID, &e.Email, &e.Action, &e.RequestingParty,
			&e.AuthRequestID, pq.Array(&e.Scopes), &e.Decision, &e.Reason, &e.RequestID, &e.IP, &e.Device,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
