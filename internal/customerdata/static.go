package customerdata

import (
	"context"
	"sort"
	"time"
)

// Static serves fixed fixtures per customer id.
type Static struct {
	orders      map[string][]Order
	loyalty     map[string]Loyalty
	offers      map[string][]Offer
	preferences map[string]Preferences
}

// Fixtures seeds a Static provider.
type Fixtures struct {
	Orders      map[string][]Order
	Loyalty     map[string]Loyalty
	Offers      map[string][]Offer
	Preferences map[string]Preferences
}

func NewStatic(f Fixtures) *Static {
	return &Static{
		orders:      f.Orders,
		loyalty:     f.Loyalty,
		offers:      f.Offers,
		preferences: f.Preferences,
	}
}

// Orders returns the most recent orders first. limit <= 0 returns all.
func (s *Static) Orders(_ context.Context, customerID string, limit int) ([]Order, error) {
	orders := append([]Order{}, s.orders[customerID]...)
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].PlacedAt.After(orders[j].PlacedAt)
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (s *Static) Loyalty(_ context.Context, customerID string) (*Loyalty, error) {
	l, ok := s.loyalty[customerID]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *Static) Offers(_ context.Context, customerID string) ([]Offer, error) {
	return append([]Offer{}, s.offers[customerID]...), nil
}

func (s *Static) Preferences(_ context.Context, customerID string) (*Preferences, error) {
	p, ok := s.preferences[customerID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// DefaultFixtures match the development directory's customers.
func DefaultFixtures() Fixtures {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 10, 0, 0, 0, time.UTC) }
	gbp := func(minor int64) Money { return Money{Amount: minor, Currency: "GBP"} }

	return Fixtures{
		Orders: map[string][]Order{
			"cust_001": {
				{
					ID: "ord_1001", PlacedAt: day(2026, 1, 14), Status: "delivered", Total: gbp(4598),
					Lines: []OrderLine{
						{SKU: "TSH-BLK-M", Name: "Organic cotton tee", Quantity: 2, Price: gbp(1499)},
						{SKU: "SCK-GRY-42", Name: "Merino socks", Quantity: 1, Price: gbp(1600)},
					},
				},
				{
					ID: "ord_1002", PlacedAt: day(2026, 2, 3), Status: "shipped", Total: gbp(8900),
					Lines: []OrderLine{
						{SKU: "JKT-NVY-M", Name: "Waxed field jacket", Quantity: 1, Price: gbp(8900)},
					},
				},
			},
			"cust_002": {
				{
					ID: "ord_2001", PlacedAt: day(2025, 11, 20), Status: "returned", Total: gbp(3200),
					Lines: []OrderLine{
						{SKU: "SHO-WHT-39", Name: "Canvas trainers", Quantity: 1, Price: gbp(3200)},
					},
				},
			},
		},
		Loyalty: map[string]Loyalty{
			"cust_001": {
				Program: "Rewards", Tier: "silver", Points: 1240, PointsExpiry: day(2026, 12, 31),
				NextTier: "gold", PointsToNext: 760, MemberSince: day(2021, 5, 2), MembershipRef: "RW-000184",
			},
			"cust_002": {
				Program: "Rewards", Tier: "gold", Points: 4310, PointsExpiry: day(2026, 12, 31),
				MemberSince: day(2019, 9, 17), MembershipRef: "RW-000021",
			},
		},
		Offers: map[string][]Offer{
			"cust_001": {
				{ID: "off_spring", Title: "Spring layers", Description: "15% off outerwear", Code: "SPRING15", ValidUntil: day(2026, 4, 30)},
				{ID: "off_points", Title: "Double points weekend", Description: "2x points on all orders", ValidUntil: day(2026, 3, 15)},
			},
		},
		Preferences: map[string]Preferences{
			"cust_001": {Language: "en-GB", Currency: "GBP", Sizes: []string{"M", "42"}, Categories: []string{"outerwear", "basics"}, MarketingOptIn: true},
			"cust_002": {Language: "en-US", Currency: "USD", Sizes: []string{"S", "39"}, Categories: []string{"footwear"}},
		},
	}
}
