package models

import (
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticketCollection() *core.Collection {
	c := core.NewBaseCollection("tickets")
	c.Fields.Add(
		&core.TextField{Name: "seller_id"},
		&core.TextField{Name: "buyer_id"},
		&core.NumberField{Name: "selling_price"},
		&core.SelectField{Name: "status", Values: []string{TicketStatusAvailable, TicketStatusSold}, MaxSelect: 1},
		&core.TextField{Name: "passenger_name"},
		&core.TextField{Name: "pnr_number"},
		&core.TextField{Name: "train_number"},
		&core.DateField{Name: "travel_date"},
		&core.DateField{Name: "sold_at"},
	)
	return c
}

func TestTicketFromRecord(t *testing.T) {
	r := core.NewRecord(ticketCollection())
	r.Set("id", "tkt_1")
	r.Set("seller_id", "seller_1")
	r.Set("selling_price", 1500.0)
	r.Set("status", TicketStatusAvailable)
	r.Set("pnr_number", "PNR4567890")
	r.Set("train_number", "12345")

	tk := TicketFromRecord(r)

	assert.Equal(t, "tkt_1", tk.ID)
	assert.Equal(t, "seller_1", tk.SellerID)
	assert.Equal(t, 1500.0, tk.SellingPrice)
	assert.Equal(t, TicketStatusAvailable, tk.Status)
	assert.Equal(t, "PNR4567890", tk.PNRNumber)
	assert.Nil(t, tk.SoldAt, "an unsold ticket has no sold_at")
}

func TestTicketFromRecord_SoldAt(t *testing.T) {
	r := core.NewRecord(ticketCollection())
	r.Set("status", TicketStatusSold)
	r.Set("sold_at", "2026-08-30 10:00:00.000Z")

	tk := TicketFromRecord(r)

	require.NotNil(t, tk.SoldAt)
	assert.Equal(t, TicketStatusSold, tk.Status)
	assert.False(t, tk.SoldAt.IsZero())
}

func TestTransactionFromRecord(t *testing.T) {
	c := core.NewBaseCollection("transactions")
	c.Fields.Add(
		&core.TextField{Name: "ticket_id"},
		&core.TextField{Name: "buyer_id"},
		&core.TextField{Name: "seller_id"},
		&core.NumberField{Name: "amount"},
		&core.NumberField{Name: "platform_fee"},
		&core.TextField{Name: "status"},
		&core.TextField{Name: "payment_method"},
		&core.TextField{Name: "razorpay_order_id"},
		&core.TextField{Name: "razorpay_payment_id"},
		&core.TextField{Name: "escrow_status"},
		&core.DateField{Name: "completed_at"},
	)

	r := core.NewRecord(c)
	r.Set("id", "txn_1")
	r.Set("ticket_id", "tkt_1")
	r.Set("buyer_id", "buyer_1")
	r.Set("seller_id", "seller_1")
	r.Set("amount", 1000.0)
	r.Set("platform_fee", 50.0)
	r.Set("status", TransactionStatusCompleted)
	r.Set("payment_method", PaymentMethodRazorpay)
	r.Set("escrow_status", EscrowStatusHeld)
	r.Set("completed_at", "2026-08-30 10:00:00.000Z")

	txn := TransactionFromRecord(r)

	assert.Equal(t, "txn_1", txn.ID)
	assert.Equal(t, "tkt_1", txn.TicketID)
	assert.Equal(t, 1000.0, txn.Amount)
	assert.Equal(t, 50.0, txn.PlatformFee)
	assert.Equal(t, TransactionStatusCompleted, txn.Status)
	assert.Equal(t, EscrowStatusHeld, txn.EscrowStatus)
	assert.False(t, txn.CompletedAt.IsZero())
}
