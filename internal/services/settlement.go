package services

import (
	"github.com/shopspring/decimal"
)

// CommissionRate is the platform cut on every resale. Fixed at compile
// time, not configurable per request.
var CommissionRate = decimal.NewFromFloat(0.05)

// Settlement is the money split for one confirmed sale.
type Settlement struct {
	Amount       decimal.Decimal
	PlatformFee  decimal.Decimal
	SellerAmount decimal.Decimal
}

// ComputeSettlement derives the platform fee and seller proceeds from the
// ticket's selling price. The fee is rounded to the nearest whole unit,
// the seller gets the remainder so the two always sum to the price.
func ComputeSettlement(sellingPrice decimal.Decimal) Settlement {
	fee := sellingPrice.Mul(CommissionRate).Round(0)
	return Settlement{
		Amount:       sellingPrice,
		PlatformFee:  fee,
		SellerAmount: sellingPrice.Sub(fee),
	}
}
