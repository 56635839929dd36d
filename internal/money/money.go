// Package money is the fixed-precision monetary kernel shared by the totals
// engine and the DGI payload builder. Money carries scale 2, quantities
// scale 3, VAT rates scale 2 (percent). Rounding is HALF_UP; binary floats
// are never used. All helpers assume non-negative inputs — negative values
// are rejected by request validation before they reach this package.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds to scale 2, HALF_UP.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Quantity normalizes a quantity to scale 3, HALF_UP.
func Quantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(3)
}

// Rate normalizes a VAT rate (percent) to scale 2, HALF_UP.
func Rate(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineBase computes qty·unitPrice − discount, clamped to zero.
// The product is rounded to scale 2 before the discount is applied.
func LineBase(qty, unitPrice, discount decimal.Decimal) decimal.Decimal {
	base := Round2(Quantity(qty).Mul(Round2(unitPrice))).Sub(Round2(discount))
	if base.IsNegative() {
		return decimal.Zero
	}
	return base
}

// VAT computes base·rate/100 rounded to scale 2.
func VAT(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(Rate(rate)).Div(hundred).Round(2)
}
