package services

import (
	"fmt"
	"log/slog"

	pubnub "github.com/pubnub/go"
)

// SaleNotifier pushes realtime events to users after a sale is finalized.
// Delivery is best effort; a PubNub outage never fails a confirmation.
type SaleNotifier struct {
	PubNub *pubnub.PubNub
}

func NewSaleNotifier(pn *pubnub.PubNub) *SaleNotifier {
	return &SaleNotifier{PubNub: pn}
}

// NotifyTicketSold tells the seller their ticket was bought.
func (n *SaleNotifier) NotifyTicketSold(sellerID, ticketID, transactionID string, sellerAmount float64) {
	if n.PubNub == nil {
		return
	}

	channel := fmt.Sprintf("user-%s", sellerID)
	_, _, err := n.PubNub.Publish().
		Channel(channel).
		Message(map[string]any{
			"type":           "ticket_sold",
			"ticket_id":      ticketID,
			"transaction_id": transactionID,
			"seller_amount":  sellerAmount,
		}).
		Execute()
	if err != nil {
		slog.Error("Failed to publish ticket_sold notification",
			"seller_id", sellerID,
			"ticket_id", ticketID,
			"error", err,
		)
	}
}
