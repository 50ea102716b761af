package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDiscountedPriceRoundsToCents(t *testing.T) {
	tests := []struct {
		name        string
		price       string
		discountPct int
		want        string
	}{
		{"no discount returns catalog price", "9.99", 0, "9.99"},
		{"ten percent off rounds to cents", "9.99", 10, "8.99"},
		{"clean division stays exact", "50.00", 20, "40.00"},
		{"full discount", "19.90", 100, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Price: decimal.RequireFromString(tt.price), DiscountPct: tt.discountPct}
			got := p.DiscountedPrice()
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestCartTotalItems(t *testing.T) {
	cart := Cart{Items: []CartItem{{Quantity: 3}, {Quantity: 2}}}
	assert.Equal(t, 5, cart.TotalItems())
	assert.Equal(t, 0, (&Cart{}).TotalItems())
}

func TestInventoryAvailable(t *testing.T) {
	inv := Inventory{CurrentStock: 4, MinimumStock: 2}
	assert.True(t, inv.Available(4))
	assert.False(t, inv.Available(5))
	assert.False(t, inv.LowStock())
	assert.True(t, (&Inventory{CurrentStock: 2, MinimumStock: 2}).LowStock())
}
