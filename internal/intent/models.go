// Package intent records shopping intents as an append-only activity log per
// customer and folds the log into current state on read.
package intent

import (
	"encoding/json"
	"time"
)

// ActivityKind distinguishes the entry that seeds an intent from later changes.
type ActivityKind string

const (
	KindCreated ActivityKind = "created"
	KindUpdated ActivityKind = "updated"
)

// Well-known intent statuses. Callers may set others through update_intent.
const (
	StatusCreated   = "created"
	StatusFulfilled = "fulfilled"
)

// Activity is one immutable log entry. Status is nil when the activity did
// not carry one.
type Activity struct {
	Seq        int64
	CustomerID string
	IntentID   string
	Kind       ActivityKind
	Status     *string
	Payload    Payload
	CreatedAt  time.Time
}

// Payload is the activity body stored as JSON.
type Payload struct {
	IntentType string          `json:"intent_type,omitempty"`
	Context    json.RawMessage `json:"context,omitempty"`
	Milestone  string          `json:"milestone,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	OrderID    string          `json:"order_id,omitempty"`
}

// Milestone is an "updated" activity as it appears on a folded intent.
type Milestone struct {
	Milestone string          `json:"milestone,omitempty"`
	Status    string          `json:"status,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	OrderID   string          `json:"order_id,omitempty"`
	At        time.Time       `json:"at"`
}

// Intent is the folded view returned by get_intents.
type Intent struct {
	ID         string          `json:"intent_id"`
	IntentType string          `json:"intent_type"`
	Context    json.RawMessage `json:"context,omitempty"`
	Status     string          `json:"status"`
	Milestones []Milestone     `json:"milestones"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CreateParams are the scp.create_intent params.
type CreateParams struct {
	IntentType string          `json:"intent_type"`
	Context    json.RawMessage `json:"context"`
}

// UpdateParams are the scp.update_intent params.
type UpdateParams struct {
	IntentID  string          `json:"intent_id"`
	Status    *string         `json:"status"`
	Milestone string          `json:"milestone"`
	Data      json.RawMessage `json:"data"`
}

// FulfillParams are the scp.fulfill_intent params.
type FulfillParams struct {
	IntentID string `json:"intent_id"`
	OrderID  string `json:"order_id"`
}

// ListParams are the scp.get_intents params.
type ListParams struct {
	Status string `json:"status"`
}
