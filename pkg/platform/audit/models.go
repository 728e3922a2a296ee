package audit

import (
	"context"
	"errors"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers grants of delegated access and their removal.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers refused or failed authorization attempts.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine flow steps that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// Secrets (codes, tokens, magic links) never appear in an Event.
type Event struct {
	ID              string        `json:"id"`
	Category        EventCategory `json:"category"`
	Timestamp       time.Time     `json:"timestamp"`
	CustomerID      string        `json:"customer_id,omitempty"`
	Email           string        `json:"email,omitempty"`
	Action          string        `json:"action"`
	RequestingParty string        `json:"requesting_party,omitempty"`
	AuthRequestID   string        `json:"auth_request_id,omitempty"`
	Scopes          []string      `json:"scopes,omitempty"`
	Decision        string        `json:"decision,omitempty"`
	Reason          string        `json:"reason,omitempty"`
	RequestID       string        `json:"request_id,omitempty"`
	IP              string        `json:"ip,omitempty"`
	Device          string        `json:"device,omitempty"`
}

// AuditEvent names an action recorded by the authorization flow.
type AuditEvent string

const (
	EventAuthorizationRequested AuditEvent = "authorization_requested"
	EventAuthorizationConfirmed AuditEvent = "authorization_confirmed"
	EventAuthorizationDenied    AuditEvent = "authorization_denied"
	EventCodeExchanged          AuditEvent = "code_exchanged"
	EventTokenRefreshed         AuditEvent = "token_refreshed"
	EventTokenRevoked           AuditEvent = "token_revoked"
	EventGrantRejected          AuditEvent = "grant_rejected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAuthorizationConfirmed: CategoryCompliance,
	EventTokenRevoked:           CategoryCompliance,

	EventAuthorizationDenied: CategorySecurity,
	EventGrantRejected:       CategorySecurity,

	EventAuthorizationRequested: CategoryOperations,
	EventCodeExchanged:          CategoryOperations,
	EventTokenRefreshed:         CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Reader is implemented by stores that can list what they hold.
type Reader interface {
	ListByCustomer(ctx context.Context, customerID string) ([]Event, error)
}

// ErrListUnsupported is returned when the configured store is write-only.
var ErrListUnsupported = errors.New("audit store does not support listing")
