// Package customerdata serves the read-only account data exposed through RPC.
package customerdata

import (
	"context"
	"time"
)

type Money struct {
	Amount   int64  `json:"amount_minor"`
	Currency string `json:"currency"`
}

type OrderLine struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    Money  `json:"price"`
}

type Order struct {
	ID       string      `json:"order_id"`
	PlacedAt time.Time   `json:"placed_at"`
	Status   string      `json:"status"`
	Total    Money       `json:"total"`
	Lines    []OrderLine `json:"lines"`
}

type Loyalty struct {
	Program       string    `json:"program"`
	Tier          string    `json:"tier"`
	Points        int       `json:"points"`
	PointsExpiry  time.Time `json:"points_expiry"`
	NextTier      string    `json:"next_tier,omitempty"`
	PointsToNext  int       `json:"points_to_next_tier,omitempty"`
	MemberSince   time.Time `json:"member_since"`
	MembershipRef string    `json:"membership_ref"`
}

type Offer struct {
	ID          string    `json:"offer_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Code        string    `json:"code,omitempty"`
	ValidUntil  time.Time `json:"valid_until"`
}

type Preferences struct {
	Language       string   `json:"language"`
	Currency       string   `json:"currency"`
	Sizes          []string `json:"sizes,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	MarketingOptIn bool     `json:"marketing_opt_in"`
}

// Provider returns a customer's account data. Unknown customers yield empty
// results rather than errors.
type Provider interface {
	Orders(ctx context.Context, customerID string, limit int) ([]Order, error)
	Loyalty(ctx context.Context, customerID string) (*Loyalty, error)
	Offers(ctx context.Context, customerID string) ([]Offer, error)
	Preferences(ctx context.Context, customerID string) (*Preferences, error)
}
