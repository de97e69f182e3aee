package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeSettlement(t *testing.T) {
	tests := []struct {
		name         string
		sellingPrice string
		wantFee      string
		wantSeller   string
	}{
		{"Round price", "1000", "50", "950"},
		{"Fee rounds up", "999", "50", "949"},
		{"Fee rounds down", "1008", "50", "958"},
		{"Small price", "10", "1", "9"},
		{"Tiny price rounds to zero fee", "9", "0", "9"},
		{"Zero price", "0", "0", "0"},
		{"Decimal price", "1050.50", "53", "997.50"},
		{"Large price", "250000", "12500", "237500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := decimal.RequireFromString(tt.sellingPrice)
			s := ComputeSettlement(price)

			assert.True(t, s.PlatformFee.Equal(decimal.RequireFromString(tt.wantFee)),
				"platform fee = %s, want %s", s.PlatformFee, tt.wantFee)
			assert.True(t, s.SellerAmount.Equal(decimal.RequireFromString(tt.wantSeller)),
				"seller amount = %s, want %s", s.SellerAmount, tt.wantSeller)
			assert.True(t, s.Amount.Equal(price))
		})
	}
}

// The fee and the seller proceeds must always add back up to the price,
// whatever the price is.
func TestComputeSettlement_SplitIsExact(t *testing.T) {
	prices := []string{"0", "1", "3", "99.99", "1000", "12345.67", "999999"}

	for _, p := range prices {
		price := decimal.RequireFromString(p)
		s := ComputeSettlement(price)

		total := s.PlatformFee.Add(s.SellerAmount)
		assert.True(t, total.Equal(price), "fee %s + seller %s != price %s", s.PlatformFee, s.SellerAmount, price)
		assert.False(t, s.PlatformFee.IsNegative())
		assert.False(t, s.SellerAmount.IsNegative())
	}
}
