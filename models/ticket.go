package models

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
)

const (
	TicketStatusAvailable = "available"
	TicketStatusSold      = "sold"
)

type Ticket struct {
	ID            string     `json:"id"`
	SellerID      string     `json:"seller_id"`
	BuyerID       string     `json:"buyer_id,omitempty"`
	SellingPrice  float64    `json:"selling_price"`
	Status        string     `json:"status"` // available, sold
	PassengerName string     `json:"passenger_name,omitempty"`
	PNRNumber     string     `json:"pnr_number,omitempty"`
	TrainNumber   string     `json:"train_number,omitempty"`
	TravelDate    time.Time  `json:"travel_date,omitempty"`
	SoldAt        *time.Time `json:"sold_at,omitempty"`
}

// TicketFromRecord maps a tickets collection record onto the domain struct.
func TicketFromRecord(r *core.Record) Ticket {
	t := Ticket{
		ID:            r.Id,
		SellerID:      r.GetString("seller_id"),
		BuyerID:       r.GetString("buyer_id"),
		SellingPrice:  r.GetFloat("selling_price"),
		Status:        r.GetString("status"),
		PassengerName: r.GetString("passenger_name"),
		PNRNumber:     r.GetString("pnr_number"),
		TrainNumber:   r.GetString("train_number"),
		TravelDate:    r.GetDateTime("travel_date").Time(),
	}
	if soldAt := r.GetDateTime("sold_at"); !soldAt.IsZero() {
		ts := soldAt.Time()
		t.SoldAt = &ts
	}
	return t
}
