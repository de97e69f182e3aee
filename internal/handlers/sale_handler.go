package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"ticket-resale/config"
	"ticket-resale/internal/services"
	"ticket-resale/internal/services/gateway/razorpay"
	"ticket-resale/internal/services/mirror"
	"ticket-resale/models"
	"ticket-resale/monitoring"
	"ticket-resale/utils"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

// fallbackBuyerName is written when the buyer did not supply a display
// name. The mirror store requires a non-empty passenger name.
const fallbackBuyerName = "Unknown Buyer"

type SaleHandler struct {
	app      core.App
	cfg      *config.Config
	locks    *services.SaleLockService
	notifier *services.SaleNotifier
	verifier *razorpay.Verifier
	mirror   *mirror.Client
	mirrorCB *utils.CircuitBreaker
}

func NewSaleHandler(
	app core.App,
	cfg *config.Config,
	locks *services.SaleLockService,
	notifier *services.SaleNotifier,
	verifier *razorpay.Verifier,
	mirrorClient *mirror.Client,
) *SaleHandler {
	return &SaleHandler{
		app:      app,
		cfg:      cfg,
		locks:    locks,
		notifier: notifier,
		verifier: verifier,
		mirror:   mirrorClient,
		mirrorCB: utils.NewCircuitBreaker("mirror"),
	}
}

type confirmSaleRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	TicketID          string `json:"ticketId"`
	BuyerID           string `json:"buyer_id"`
	BuyerName         string `json:"buyer_name"`
}

// missingFields lists required fields that are absent or empty, in a fixed
// order so the error message is stable.
func (r *confirmSaleRequest) missingFields() []string {
	required := []struct {
		name  string
		value string
	}{
		{"razorpay_payment_id", r.RazorpayPaymentID},
		{"razorpay_order_id", r.RazorpayOrderID},
		{"razorpay_signature", r.RazorpaySignature},
		{"ticketId", r.TicketID},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// ConfirmSale finalizes a ticket resale after the buyer completed a
// Razorpay checkout. The transaction record is the authoritative write:
// everything after it (sold transition, mirror, payout, notification) is
// best effort and never fails the request.
func (h *SaleHandler) ConfirmSale(e *core.RequestEvent) (err error) {
	start := time.Now()
	defer func() {
		monitoring.TrackConfirmDuration(time.Since(start))
	}()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic during sale confirmation", "panic", r, "stack", string(debug.Stack()))
			monitoring.TrackSaleConfirmation("error")

			body := map[string]any{
				"error":   "Internal server error",
				"message": fmt.Sprintf("%v", r),
			}
			if h.cfg.Environment == "development" {
				body["stack"] = string(debug.Stack())
			}
			err = e.JSON(http.StatusInternalServerError, body)
		}
	}()

	ctx := e.Request.Context()

	// Access gate
	authHeader := e.Request.Header.Get("Authorization")
	if authHeader == "" {
		monitoring.TrackSaleConfirmation("rejected")
		return e.JSON(http.StatusUnauthorized, map[string]any{
			"error": "No authorization header provided",
		})
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	authRecord, err := h.app.FindAuthRecordByToken(token, core.TokenTypeAuth)
	if err != nil {
		monitoring.TrackSaleConfirmation("rejected")
		return e.JSON(http.StatusUnauthorized, map[string]any{
			"error": "Invalid or expired token",
		})
	}

	if !authRecord.Verified() {
		monitoring.TrackSaleConfirmation("rejected")
		return e.JSON(http.StatusForbidden, map[string]any{
			"error":   "Email not verified",
			"message": "Please verify your email address before buying tickets",
		})
	}

	// Input validation, before any store access
	var req confirmSaleRequest
	if err := e.BindBody(&req); err != nil {
		monitoring.TrackSaleConfirmation("rejected")
		return e.JSON(http.StatusBadRequest, map[string]any{
			"error": "Invalid request body",
		})
	}

	if missing := req.missingFields(); len(missing) > 0 {
		monitoring.TrackSaleConfirmation("rejected")
		return e.JSON(http.StatusBadRequest, map[string]any{
			"error": "Missing required fields: " + strings.Join(missing, ", "),
		})
	}

	// Configuration check
	if !h.verifier.Configured() {
		slog.Error("Razorpay key secret is not configured")
		monitoring.TrackSaleConfirmation("error")
		return e.JSON(http.StatusInternalServerError, map[string]any{
			"error":   "Server configuration error",
			"message": "Payment verification is not configured",
		})
	}

	// Payment signature authenticity
	valid, err := h.verifier.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil || !valid {
		slog.Error("Payment signature verification failed",
			"order_id", req.RazorpayOrderID,
			"payment_id", req.RazorpayPaymentID,
			"error", err,
		)
		monitoring.TrackSaleConfirmation("rejected")
		return e.JSON(http.StatusBadRequest, map[string]any{
			"error": "Invalid payment signature",
		})
	}

	// Serialize confirmations per ticket. A Redis outage downgrades to the
	// guarded UPDATE below instead of blocking sales.
	locked, lockErr := h.locks.AcquireTicketLock(ctx, req.TicketID)
	if lockErr != nil {
		slog.Error("Sale lock unavailable, relying on guarded update", "ticket_id", req.TicketID, "error", lockErr)
	} else if !locked {
		monitoring.TrackSaleConfirmation("conflict")
		return e.JSON(http.StatusConflict, map[string]any{
			"error": "Ticket sale already in progress",
		})
	} else {
		defer h.locks.ReleaseTicketLock(context.WithoutCancel(ctx), req.TicketID)
	}

	// Item lookup
	record, err := h.app.FindRecordById("tickets", req.TicketID)
	if err != nil {
		monitoring.TrackSaleConfirmation("rejected")
		return e.JSON(http.StatusNotFound, map[string]any{
			"error":   "Ticket not found",
			"details": err.Error(),
		})
	}
	ticket := models.TicketFromRecord(record)

	if ticket.Status != models.TicketStatusAvailable {
		monitoring.TrackSaleConfirmation("conflict")
		return e.JSON(http.StatusConflict, map[string]any{
			"error": "Ticket is no longer available",
		})
	}

	sellerID := ticket.SellerID
	buyerID := req.BuyerID
	if buyerID == "" {
		buyerID = authRecord.Id
	}
	if buyerID == sellerID {
		monitoring.TrackSaleConfirmation("rejected")
		return e.JSON(http.StatusBadRequest, map[string]any{
			"error": "You cannot buy your own ticket",
		})
	}

	buyerName := req.BuyerName
	if buyerName == "" {
		buyerName = fallbackBuyerName
	}

	// Settlement computation
	sellingPrice := decimal.NewFromFloat(ticket.SellingPrice)
	settlement := services.ComputeSettlement(sellingPrice)

	// Transaction insert is the one fatal write. Money already moved at
	// the gateway, so past this point the caller must get a 200.
	txn, err := h.createTransaction(ticket.ID, buyerID, sellerID, &req, settlement)
	if err != nil {
		slog.Error("Failed to create transaction record", "ticket_id", ticket.ID, "error", err)
		monitoring.TrackSaleConfirmation("error")
		return e.JSON(http.StatusInternalServerError, map[string]any{
			"error": "Failed to create transaction record",
		})
	}

	// Sold transition, guarded so a lost race can never flip a sold ticket
	// to another buyer. Non-fatal.
	if err := h.markTicketSold(ticket.ID, buyerID, buyerName); err != nil {
		slog.Error("Failed to mark ticket as sold", "ticket_id", ticket.ID, "error", err)
	}

	// Best-effort mirror of the passenger name to the secondary store.
	h.mirrorPassengerName(ticket, buyerName)

	// Pending payout for the seller. Non-fatal.
	if err := h.createPayout(txn.Id, sellerID, settlement.SellerAmount.InexactFloat64()); err != nil {
		slog.Error("Failed to create payout record", "transaction_id", txn.Id, "error", err)
	} else {
		monitoring.TrackPayoutCreated()
	}

	h.notifier.NotifyTicketSold(sellerID, ticket.ID, txn.Id, settlement.SellerAmount.InexactFloat64())

	monitoring.TrackSaleConfirmation("success")
	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Payment verified and ticket sale finalized",
		"transaction": map[string]any{
			"id":                 txn.Id,
			"amount":             settlement.Amount.InexactFloat64(),
			"platformCommission": settlement.PlatformFee.InexactFloat64(),
			"sellerAmount":       settlement.SellerAmount.InexactFloat64(),
			"status":             models.TransactionStatusCompleted,
		},
		"ticket": map[string]any{
			"id":     ticket.ID,
			"status": models.TicketStatusSold,
		},
	})
}

func (h *SaleHandler) createTransaction(ticketID, buyerID, sellerID string, req *confirmSaleRequest, s services.Settlement) (*core.Record, error) {
	collection, err := h.app.FindCollectionByNameOrId("transactions")
	if err != nil {
		return nil, err
	}

	txn := core.NewRecord(collection)
	txn.Set("ticket_id", ticketID)
	txn.Set("buyer_id", buyerID)
	txn.Set("seller_id", sellerID)
	txn.Set("amount", s.Amount.InexactFloat64())
	txn.Set("platform_fee", s.PlatformFee.InexactFloat64())
	txn.Set("status", models.TransactionStatusCompleted)
	txn.Set("payment_method", models.PaymentMethodRazorpay)
	txn.Set("razorpay_order_id", req.RazorpayOrderID)
	txn.Set("razorpay_payment_id", req.RazorpayPaymentID)
	txn.Set("escrow_status", models.EscrowStatusHeld)
	txn.Set("completed_at", types.NowDateTime())

	if err := h.app.Save(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// markTicketSold performs the available→sold transition as a conditional
// update. Zero affected rows means another confirmation won the race after
// our status check; the transaction record for this payment still stands.
func (h *SaleHandler) markTicketSold(ticketID, buyerID, buyerName string) error {
	res, err := h.app.DB().NewQuery(
		"UPDATE tickets SET status = {:sold}, buyer_id = {:buyer}, passenger_name = {:name}, sold_at = {:soldAt} WHERE id = {:id} AND status = {:available}",
	).Bind(dbx.Params{
		"sold":      models.TicketStatusSold,
		"buyer":     buyerID,
		"name":      buyerName,
		"soldAt":    types.NowDateTime().String(),
		"id":        ticketID,
		"available": models.TicketStatusAvailable,
	}).Execute()
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		return fmt.Errorf("ticket %s was no longer available", ticketID)
	}
	return nil
}

func (h *SaleHandler) createPayout(transactionID, sellerID string, amount float64) error {
	collection, err := h.app.FindCollectionByNameOrId("payouts")
	if err != nil {
		return err
	}

	reference, err := utils.GenerateCode(4)
	if err != nil {
		reference = ""
	}

	payout := core.NewRecord(collection)
	payout.Set("transaction_id", transactionID)
	payout.Set("seller_id", sellerID)
	payout.Set("amount", amount)
	payout.Set("status", models.PayoutStatusPending)
	payout.Set("payment_method", models.PayoutMethodUPI)
	payout.Set("reference", reference)

	return h.app.Save(payout)
}

// mirrorPassengerName fires the secondary-store PATCH in the background.
// The response contract never waits on, or fails because of, the mirror.
func (h *SaleHandler) mirrorPassengerName(ticket models.Ticket, buyerName string) {
	pnr := ticket.PNRNumber
	if h.mirror == nil || pnr == "" {
		slog.Info("Skipping passenger name mirror",
			"ticket_id", ticket.ID,
			"mirror_configured", h.mirror != nil,
			"has_pnr", pnr != "",
		)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := h.mirrorCB.Execute(ctx, func() error {
			return h.mirror.UpdatePassengerName(ctx, pnr, buyerName)
		})
		if err != nil {
			monitoring.TrackMirrorFailure()
			slog.Error("Failed to mirror passenger name", "pnr", pnr, "error", err)
		}
	}()
}

// GetSaleStatus returns the latest transaction recorded for a ticket.
func (h *SaleHandler) GetSaleStatus(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	ticketID := e.Request.PathValue("ticketId")

	txns, err := h.app.FindRecordsByFilter(
		"transactions",
		"ticket_id = {:ticketId}",
		"-completed_at",
		1,
		0,
		map[string]any{"ticketId": ticketID},
	)
	if err != nil {
		slog.Error("Failed to load sale status", "ticket_id", ticketID, "error", err)
		return e.JSON(http.StatusInternalServerError, map[string]any{
			"error": "Failed to load sale status",
		})
	}
	if len(txns) == 0 {
		return e.JSON(http.StatusNotFound, map[string]any{
			"error": "No sale found for ticket",
		})
	}

	txn := models.TransactionFromRecord(txns[0])
	return e.JSON(http.StatusOK, map[string]any{
		"ticket_id": ticketID,
		"transaction": map[string]any{
			"id":           txn.ID,
			"amount":       txn.Amount,
			"status":       txn.Status,
			"completed_at": txn.CompletedAt,
		},
	})
}
