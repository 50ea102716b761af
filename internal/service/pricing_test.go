package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPricingEngineQuote(t *testing.T) {
	engine := NewPricingEngine(DefaultTaxRate)

	tests := []struct {
		name      string
		subtotal  string
		discount  string
		wantTax   string
		wantTotal string
	}{
		{
			name:     "no discount",
			subtotal: "100.00", discount: "0",
			wantTax: "18.00", wantTotal: "118.00",
		},
		{
			name:     "ten percent off one hundred",
			subtotal: "100.00", discount: "10.00",
			wantTax: "16.20", wantTotal: "106.20",
		},
		{
			name:     "discount covers the whole subtotal",
			subtotal: "30.00", discount: "30.00",
			wantTax: "0.00", wantTotal: "0.00",
		},
		{
			name:     "discount larger than subtotal clamps at zero",
			subtotal: "30.00", discount: "50.00",
			wantTax: "0.00", wantTotal: "0.00",
		},
		{
			name:     "rounds to cents",
			subtotal: "99.99", discount: "0.33",
			wantTax: "17.94", wantTotal: "117.60",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, total := engine.Quote(dec(tt.subtotal), dec(tt.discount))
			assert.True(t, dec(tt.wantTax).Equal(tax), "tax: want %s, got %s", tt.wantTax, tax)
			assert.True(t, dec(tt.wantTotal).Equal(total), "total: want %s, got %s", tt.wantTotal, total)
		})
	}
}

func TestPricingEngineCustomRate(t *testing.T) {
	engine := NewPricingEngine(dec("0.10"))

	tax, total := engine.Quote(dec("200.00"), dec("0"))
	assert.True(t, dec("20.00").Equal(tax))
	assert.True(t, dec("220.00").Equal(total))
}
