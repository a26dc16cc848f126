package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sporthub/sporthub-api/internal/config"
	"github.com/sporthub/sporthub-api/internal/model"
	"github.com/sporthub/sporthub-api/internal/payment"
	q "github.com/sporthub/sporthub-api/internal/queue"
	"github.com/sporthub/sporthub-api/internal/repository"
	queue_publisher "github.com/sporthub/sporthub-api/internal/service"
)

// PaymentHandler drives the checkout flow: minting gateway orders for
// pending bookings and memberships, and verifying the signed callback
// that confirms them.  The gateway call never runs inside a database
// transaction; local state is written before and after it in separate
// transactions so a gateway timeout cannot hold row locks.
type PaymentHandler struct {
	Cfg         config.Config
	Gateway     payment.Gateway
	Payments    *repository.PaymentRepo
	Bookings    *repository.BookingRepo
	Events      *repository.EventRepo
	Memberships *repository.MembershipRepo
}

// NewPaymentHandler constructs a PaymentHandler.  All dependencies must
// be non-nil.
func NewPaymentHandler(cfg config.Config, gw payment.Gateway, p *repository.PaymentRepo, b *repository.BookingRepo, e *repository.EventRepo, m *repository.MembershipRepo) *PaymentHandler {
	if gw == nil || p == nil || b == nil || e == nil || m == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{Cfg: cfg, Gateway: gw, Payments: p, Bookings: b, Events: e, Memberships: m}
}

// CreateOrder handles POST /v1/payments/order.  The body names either a
// booking_id or a membership_id.  The handler re-validates the target
// is still payable, asks the gateway for an order, then in one
// transaction supersedes any prior pending payment for the target and
// records the new one.  The response carries the public key id for the
// checkout widget; the secret never leaves the server.
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		BookingID    uint64 `json:"booking_id"`
		MembershipID uint64 `json:"membership_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if (body.BookingID == 0) == (body.MembershipID == 0) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide exactly one of booking_id or membership_id"})
	}
	if body.BookingID != 0 {
		return h.orderForBooking(c, userID, body.BookingID)
	}
	return h.orderForMembership(c, userID, body.MembershipID)
}

func (h *PaymentHandler) orderForBooking(c echo.Context, userID, bookingID uint64) error {
	ctx := c.Request().Context()

	rec, err := h.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if rec.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if rec.Status == model.BookingConfirmed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already paid"})
	}
	if rec.Status != model.BookingPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not payable"})
	}
	if time.Now().UTC().After(rec.ExpiresAt) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking hold has expired"})
	}

	order, err := h.Gateway.CreateOrder(ctx, rec.AmountPaise, "INR", fmt.Sprintf("booking_%d", rec.ID))
	if err != nil {
		log.Printf("payment: order creation failed for booking %d: %v", rec.ID, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unavailable"})
	}

	tx, err := h.Payments.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Re-check under the lock: the sweep may have cancelled the booking
	// while the gateway call was in flight.
	locked, err := h.Bookings.GetForUpdateTx(ctx, tx, rec.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if locked.Status != model.BookingPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not payable"})
	}
	if err := h.Payments.SupersedePendingForBookingTx(ctx, tx, rec.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to supersede prior order"})
	}
	pay := model.Payment{
		BookingID:      &rec.ID,
		AmountPaise:    order.AmountPaise,
		Currency:       order.Currency,
		GatewayOrderID: order.ID,
	}
	if err := h.Payments.CreateTx(ctx, tx, &pay); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record payment"})
	}
	// Keep the hold alive while the user completes checkout.
	if err := h.Bookings.ExtendHoldTx(ctx, tx, rec.ID, time.Now().UTC().Add(h.Cfg.HoldTTL)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to extend hold"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, echo.Map{
		"gateway_order_id": order.ID,
		"amount_paise":     order.AmountPaise,
		"currency":         order.Currency,
		"key_id":           h.Cfg.RazorpayKeyID,
	})
}

func (h *PaymentHandler) orderForMembership(c echo.Context, userID, membershipID uint64) error {
	ctx := c.Request().Context()

	tx, err := h.Payments.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	m, err := h.Memberships.GetForUpdateTx(ctx, tx, membershipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "membership not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load membership"})
	}
	if m.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if m.Status != model.MembershipPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "membership is not payable"})
	}
	plan, err := h.Memberships.GetPlanByID(ctx, m.PlanID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load plan"})
	}
	// Release the lock before the network call; the pending membership
	// cannot move while unpaid.
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	order, err := h.Gateway.CreateOrder(ctx, plan.PricePaise, "INR", fmt.Sprintf("membership_%d", m.ID))
	if err != nil {
		log.Printf("payment: order creation failed for membership %d: %v", m.ID, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unavailable"})
	}

	tx2, err := h.Payments.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed2 := false
	defer func() {
		if !committed2 {
			_ = tx2.Rollback()
		}
	}()
	if err := h.Payments.SupersedePendingForMembershipTx(ctx, tx2, m.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to supersede prior order"})
	}
	pay := model.Payment{
		MembershipID:   &m.ID,
		AmountPaise:    order.AmountPaise,
		Currency:       order.Currency,
		GatewayOrderID: order.ID,
	}
	if err := h.Payments.CreateTx(ctx, tx2, &pay); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record payment"})
	}
	if err := tx2.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed2 = true
	return c.JSON(http.StatusCreated, echo.Map{
		"gateway_order_id": order.ID,
		"amount_paise":     order.AmountPaise,
		"currency":         order.Currency,
		"key_id":           h.Cfg.RazorpayKeyID,
	})
}

// ReportFailure handles POST /v1/payments/failed.  Checkout widgets
// call this when the gateway reports a failed attempt so the order does
// not linger as PENDING.  The booking hold is untouched; the user may
// mint a fresh order and retry until the hold expires.
func (h *PaymentHandler) ReportFailure(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		GatewayOrderID string `json:"gateway_order_id"`
	}
	if err := c.Bind(&body); err != nil || body.GatewayOrderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "gateway_order_id is required"})
	}
	ctx := c.Request().Context()
	tx, err := h.Payments.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	pay, err := h.Payments.GetByOrderIDForUpdateTx(ctx, tx, body.GatewayOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load payment"})
	}
	if !h.ownsPayment(ctx, pay, userID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	// A settled or superseded payment is left alone.
	if pay.Status != model.PaymentPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment is no longer active"})
	}
	if err := h.Payments.MarkFailedTx(ctx, tx, pay.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update payment"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{
		"gateway_order_id": pay.GatewayOrderID,
		"status":           model.PaymentFailed,
	})
}

// ListMyPayments handles GET /v1/my-payments: every payment attached to
// the user's bookings and memberships, newest first.
func (h *PaymentHandler) ListMyPayments(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	pays, err := h.Payments.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load payments"})
	}
	items := make([]echo.Map, 0, len(pays))
	for _, p := range pays {
		item := echo.Map{
			"gateway_order_id": p.GatewayOrderID,
			"amount_paise":     p.AmountPaise,
			"currency":         p.Currency,
			"status":           p.Status,
			"created_at":       p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if p.BookingID != nil {
			item["booking_id"] = *p.BookingID
		}
		if p.MembershipID != nil {
			item["membership_id"] = *p.MembershipID
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ownsPayment resolves the payment's target back to its owning user.
func (h *PaymentHandler) ownsPayment(ctx context.Context, pay model.Payment, userID uint64) bool {
	switch {
	case pay.BookingID != nil:
		rec, err := h.Bookings.GetByID(ctx, *pay.BookingID)
		return err == nil && rec.UserID == userID
	case pay.MembershipID != nil:
		m, err := h.Memberships.GetByID(ctx, *pay.MembershipID)
		return err == nil && m.UserID == userID
	}
	return false
}

// Verify handles POST /v1/payments/verify.  The flow is strictly
// ordered: signature check first (nothing is read or written on a bad
// signature), then idempotency, then a single transaction that locks
// the payment and its target, re-acquires capacity if the hold lapsed
// while the user was paying, and commits the confirmation atomically.
func (h *PaymentHandler) Verify(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		GatewayOrderID   string `json:"gateway_order_id"`
		GatewayPaymentID string `json:"gateway_payment_id"`
		Signature        string `json:"signature"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.GatewayOrderID == "" || body.GatewayPaymentID == "" || body.Signature == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "gateway_order_id, gateway_payment_id and signature are required"})
	}

	if !payment.VerifySignature(body.GatewayOrderID, body.GatewayPaymentID, body.Signature, h.Cfg.RazorpaySecret) {
		log.Printf("payment: signature mismatch for order %s from user %d", body.GatewayOrderID, userID)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "signature verification failed"})
	}

	ctx := c.Request().Context()
	tx, err := h.Payments.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	pay, err := h.Payments.GetByOrderIDForUpdateTx(ctx, tx, body.GatewayOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load payment"})
	}

	// Idempotency: a re-delivered callback for a settled payment is
	// answered without side effects.
	if pay.Status == model.PaymentCompleted {
		return c.JSON(http.StatusOK, paymentVerifiedResponse(pay))
	}
	if pay.Status != model.PaymentPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment is no longer active"})
	}

	switch {
	case pay.BookingID != nil:
		status, resp, finalized := h.settleBooking(ctx, tx, &pay, body.GatewayPaymentID, body.Signature)
		if finalized {
			// the reconciliation path commits the transaction itself
			committed = true
		}
		if status != http.StatusOK {
			return c.JSON(status, resp)
		}
		if err := tx.Commit(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
		}
		committed = true
		h.publishBookingConfirmed(*pay.BookingID, pay)
		return c.JSON(http.StatusOK, resp)

	case pay.MembershipID != nil:
		status, resp := h.settleMembership(ctx, tx, &pay, body.GatewayPaymentID, body.Signature)
		if status != http.StatusOK {
			return c.JSON(status, resp)
		}
		if err := tx.Commit(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
		}
		committed = true
		h.publishPaymentCompleted(pay, body.GatewayPaymentID)
		return c.JSON(http.StatusOK, resp)
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment has no target"})
}

// settleBooking confirms the paid booking under its row lock.  When the
// expiry sweep released the hold while the user was paying, it tries to
// take the capacity back; if another user now owns it the gap is logged
// with the reconciliation prefix and the caller returns 409.  The third
// return value reports whether the transaction was already finalized.
func (h *PaymentHandler) settleBooking(ctx context.Context, tx *sql.Tx, pay *model.Payment, gatewayPaymentID, signature string) (int, echo.Map, bool) {
	rec, err := h.Bookings.GetForUpdateTx(ctx, tx, *pay.BookingID)
	if err != nil {
		return http.StatusInternalServerError, echo.Map{"error": "failed to load booking"}, false
	}

	switch rec.Status {
	case model.BookingPending, model.BookingConfirmed:
		// normal path, or a prior verify confirmed the booking but lost
		// the payment update
	case model.BookingCancelled:
		// hold lapsed and was released; take the capacity back under the
		// lock before confirming
		if rec.Kind == model.KindEvent && rec.EventSlotID != nil {
			if _, err := h.Events.GetSlotForUpdateTx(ctx, tx, *rec.EventSlotID); err != nil {
				return http.StatusInternalServerError, echo.Map{"error": "failed to load event slot"}, false
			}
			if err := h.Events.TakeSeatsTx(ctx, tx, *rec.EventSlotID, rec.Quantity); err != nil {
				return h.reconcile(ctx, tx, pay, rec, gatewayPaymentID, signature)
			}
		}
	default:
		return http.StatusConflict, echo.Map{"error": "booking cannot be confirmed"}, false
	}

	if rec.Status != model.BookingConfirmed {
		if err := h.Bookings.SetStatusTx(ctx, tx, rec.ID, model.BookingConfirmed); err != nil {
			if errors.Is(err, repository.ErrNotAvailable) {
				return h.reconcile(ctx, tx, pay, rec, gatewayPaymentID, signature)
			}
			return http.StatusInternalServerError, echo.Map{"error": "failed to confirm booking"}, false
		}
	}
	if err := h.Payments.MarkCompletedTx(ctx, tx, pay.ID, gatewayPaymentID, signature); err != nil {
		return http.StatusInternalServerError, echo.Map{"error": "failed to complete payment"}, false
	}
	pay.Status = model.PaymentCompleted
	pay.GatewayPaymentID = &gatewayPaymentID
	return http.StatusOK, paymentVerifiedResponse(*pay), false
}

// reconcile records a captured payment whose capacity could not be
// recovered: the payment completes (the money moved) but the booking
// stays terminal, and the gap is logged for manual follow-up.
func (h *PaymentHandler) reconcile(ctx context.Context, tx *sql.Tx, pay *model.Payment, rec repository.BookingRecord, gatewayPaymentID, signature string) (int, echo.Map, bool) {
	if err := h.Payments.MarkCompletedTx(ctx, tx, pay.ID, gatewayPaymentID, signature); err != nil {
		return http.StatusInternalServerError, echo.Map{"error": "failed to complete payment"}, false
	}
	if err := tx.Commit(); err != nil {
		return http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"}, false
	}
	log.Printf("reconciliation: payment %s captured for booking %d but capacity was lost; refund required",
		pay.GatewayOrderID, rec.ID)
	return http.StatusConflict, echo.Map{"error": "payment captured but the slot is no longer available; a refund will be issued"}, true
}

// settleMembership activates the paid membership, expiring any prior
// active membership of the user in the same transaction.
func (h *PaymentHandler) settleMembership(ctx context.Context, tx *sql.Tx, pay *model.Payment, gatewayPaymentID, signature string) (int, echo.Map) {
	m, err := h.Memberships.GetForUpdateTx(ctx, tx, *pay.MembershipID)
	if err != nil {
		return http.StatusInternalServerError, echo.Map{"error": "failed to load membership"}
	}
	if m.Status == model.MembershipPending {
		plan, err := h.Memberships.GetPlanByID(ctx, m.PlanID)
		if err != nil {
			return http.StatusInternalServerError, echo.Map{"error": "failed to load plan"}
		}
		startsOn := time.Now().UTC()
		endsOn := startsOn.AddDate(0, 0, int(plan.DurationDays))
		if err := h.Memberships.ActivateTx(ctx, tx, m.ID, m.UserID, startsOn, endsOn); err != nil {
			return http.StatusInternalServerError, echo.Map{"error": "failed to activate membership"}
		}
	}
	if err := h.Payments.MarkCompletedTx(ctx, tx, pay.ID, gatewayPaymentID, signature); err != nil {
		return http.StatusInternalServerError, echo.Map{"error": "failed to complete payment"}
	}
	pay.Status = model.PaymentCompleted
	pay.GatewayPaymentID = &gatewayPaymentID
	return http.StatusOK, paymentVerifiedResponse(*pay)
}

func paymentVerifiedResponse(pay model.Payment) echo.Map {
	resp := echo.Map{
		"status":           pay.Status,
		"gateway_order_id": pay.GatewayOrderID,
		"amount_paise":     pay.AmountPaise,
	}
	if pay.BookingID != nil {
		resp["booking_id"] = *pay.BookingID
	}
	if pay.MembershipID != nil {
		resp["membership_id"] = *pay.MembershipID
	}
	return resp
}

// publishBookingConfirmed emits the post-commit events for a confirmed
// booking.  Publishing is best effort and must never fail the request.
func (h *PaymentHandler) publishBookingConfirmed(bookingID uint64, pay model.Payment) {
	rec, err := h.Bookings.GetByID(context.Background(), bookingID)
	if err != nil {
		log.Printf("payment: post-commit booking load failed: %v", err)
		return
	}
	ev := q.BookingConfirmedEvent{
		BookingID:   rec.ID,
		UserID:      rec.UserID,
		Kind:        string(rec.Kind),
		Quantity:    rec.Quantity,
		AmountPaise: rec.AmountPaise,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if rec.SlotDate != nil {
		ev.SlotDate = *rec.SlotDate
	}
	if rec.StartTime != nil {
		ev.StartTime = *rec.StartTime
	}
	if rec.EndTime != nil {
		ev.EndTime = *rec.EndTime
	}
	go func() {
		_ = queue_publisher.PublishBookingConfirmed(context.Background(), ev)
	}()
	h.publishPaymentCompleted(pay, valueOr(pay.GatewayPaymentID))
}

func (h *PaymentHandler) publishPaymentCompleted(pay model.Payment, gatewayPaymentID string) {
	ev := q.PaymentCompletedEvent{
		PaymentID:        pay.ID,
		GatewayOrderID:   pay.GatewayOrderID,
		GatewayPaymentID: gatewayPaymentID,
		AmountPaise:      pay.AmountPaise,
		CompletedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if pay.BookingID != nil {
		ev.BookingID = *pay.BookingID
	}
	if pay.MembershipID != nil {
		ev.MembershipID = *pay.MembershipID
	}
	go func() {
		_ = queue_publisher.PublishPaymentCompleted(context.Background(), ev)
	}()
}

func valueOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
