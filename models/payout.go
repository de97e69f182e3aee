package models

const (
	PayoutStatusPending = "pending"
	PayoutStatusPaid    = "paid"

	PayoutMethodUPI = "upi"
)
