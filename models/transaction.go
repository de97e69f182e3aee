package models

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
)

const (
	TransactionStatusCompleted = "completed"

	EscrowStatusHeld     = "held"
	EscrowStatusReleased = "released"

	PaymentMethodRazorpay = "razorpay"
)

type Transaction struct {
	ID                string    `json:"id"`
	TicketID          string    `json:"ticket_id"`
	BuyerID           string    `json:"buyer_id"`
	SellerID          string    `json:"seller_id"`
	Amount            float64   `json:"amount"`
	PlatformFee       float64   `json:"platform_fee"`
	Status            string    `json:"status"` // completed
	PaymentMethod     string    `json:"payment_method"`
	RazorpayOrderID   string    `json:"razorpay_order_id"`
	RazorpayPaymentID string    `json:"razorpay_payment_id"`
	EscrowStatus      string    `json:"escrow_status"` // held, released
	CompletedAt       time.Time `json:"completed_at"`
}

// TransactionFromRecord maps a transactions collection record onto the
// domain struct.
func TransactionFromRecord(r *core.Record) Transaction {
	return Transaction{
		ID:                r.Id,
		TicketID:          r.GetString("ticket_id"),
		BuyerID:           r.GetString("buyer_id"),
		SellerID:          r.GetString("seller_id"),
		Amount:            r.GetFloat("amount"),
		PlatformFee:       r.GetFloat("platform_fee"),
		Status:            r.GetString("status"),
		PaymentMethod:     r.GetString("payment_method"),
		RazorpayOrderID:   r.GetString("razorpay_order_id"),
		RazorpayPaymentID: r.GetString("razorpay_payment_id"),
		EscrowStatus:      r.GetString("escrow_status"),
		CompletedAt:       r.GetDateTime("completed_at").Time(),
	}
}
