package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLineBase(t *testing.T) {
	// 2 × 10000 − 0 = 20000
	assert.True(t, dec("20000").Equal(LineBase(dec("2"), dec("10000"), decimal.Zero)))

	// Discount applied after the product
	assert.True(t, dec("19500").Equal(LineBase(dec("2"), dec("10000"), dec("500"))))

	// Discount larger than the product clamps to zero
	assert.True(t, decimal.Zero.Equal(LineBase(dec("1"), dec("100"), dec("500"))))

	// Fractional quantity at scale 3
	assert.True(t, dec("16.67").Equal(LineBase(dec("1.667"), dec("10"), decimal.Zero)))
}

func TestVATHalfUp(t *testing.T) {
	// 20000 × 18% = 3600
	assert.True(t, dec("3600").Equal(VAT(dec("20000"), dec("18"))))

	// 18% of 13.75 = 2.475 → rounds up to 2.48
	assert.True(t, dec("2.48").Equal(VAT(dec("13.75"), dec("18"))))

	// Zero rate yields zero VAT
	assert.True(t, decimal.Zero.Equal(VAT(dec("9999.99"), decimal.Zero)))
}

func TestQuantityScale(t *testing.T) {
	assert.True(t, dec("1.235").Equal(Quantity(dec("1.2345"))))
	assert.True(t, dec("0.001").Equal(Quantity(dec("0.001"))))
}
