package customerdata

//go:generate mockgen -source=provider.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	p := NewStatic(DefaultFixtures())
	ctx := context.Background()

	t.Run("orders newest first and limited", func(t *testing.T) {
		orders, err := p.Orders(ctx, "cust_001", 0)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "ord_1002", orders[0].ID)

		limited, err := p.Orders(ctx, "cust_001", 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("unknown customer yields empty results", func(t *testing.T) {
		orders, err := p.Orders(ctx, "cust_missing", 10)
		require.NoError(t, err)
		assert.Empty(t, orders)

		loyalty, err := p.Loyalty(ctx, "cust_missing")
		require.NoError(t, err)
		assert.Nil(t, loyalty)

		offers, err := p.Offers(ctx, "cust_missing")
		require.NoError(t, err)
		assert.Empty(t, offers)
	})

	t.Run("loyalty and preferences", func(t *testing.T) {
		loyalty, err := p.Loyalty(ctx, "cust_002")
		require.NoError(t, err)
		assert.Equal(t, "gold", loyalty.Tier)

		prefs, err := p.Preferences(ctx, "cust_001")
		require.NoError(t, err)
		assert.True(t, prefs.MarketingOptIn)
	})
}
