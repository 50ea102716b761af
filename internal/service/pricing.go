package service

import "github.com/shopspring/decimal"

// DefaultTaxRate is the IGV fraction applied to the discounted subtotal.
var DefaultTaxRate = decimal.RequireFromString("0.18")

// PricingEngine computes order totals. It is pure: no I/O, deterministic
// given its inputs, all arithmetic in decimals.
type PricingEngine struct {
	taxRate decimal.Decimal
}

func NewPricingEngine(taxRate decimal.Decimal) *PricingEngine {
	return &PricingEngine{taxRate: taxRate}
}

// Quote returns tax and total for a subtotal with a discount already
// computed: tax = (subtotal - discount) * rate, total = taxable + tax.
// Both are rounded to cents.
func (e *PricingEngine) Quote(subtotal, discount decimal.Decimal) (tax, total decimal.Decimal) {
	taxable := subtotal.Sub(discount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	tax = taxable.Mul(e.taxRate).Round(2)
	total = taxable.Add(tax).Round(2)
	return tax, total
}
