package repository

import (
	"context"
	"database/sql"

	"github.com/sporthub/sporthub-api/internal/model"
)

// PaymentRepo persists gateway payment records.  A payment row is the
// local shadow of a Razorpay order; the verify path locks it by order
// id so duplicate callback deliveries serialize and commit exactly
// once.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo constructs a PaymentRepo given a DB handle.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// DB exposes the underlying sql.DB for cross-repository transactions.
func (r *PaymentRepo) DB() *sql.DB { return r.db }

const paymentCols = `id, booking_id, membership_id, amount_paise, currency, gateway_order_id, gateway_payment_id, signature, status, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (model.Payment, error) {
	var p model.Payment
	var bookingID, membershipID sql.NullInt64
	var gatewayPaymentID, signature sql.NullString
	err := row.Scan(&p.ID, &bookingID, &membershipID, &p.AmountPaise, &p.Currency,
		&p.GatewayOrderID, &gatewayPaymentID, &signature, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Payment{}, err
	}
	if bookingID.Valid {
		v := uint64(bookingID.Int64)
		p.BookingID = &v
	}
	if membershipID.Valid {
		v := uint64(membershipID.Int64)
		p.MembershipID = &v
	}
	if gatewayPaymentID.Valid {
		v := gatewayPaymentID.String
		p.GatewayPaymentID = &v
	}
	if signature.Valid {
		v := signature.String
		p.Signature = &v
	}
	return p, nil
}

// SupersedePendingForBookingTx retires any still-pending payments for a
// booking.  Called before inserting a fresh order so at most one live
// order targets the booking; completed or failed rows are untouched.
func (r *PaymentRepo) SupersedePendingForBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = 'SUPERSEDED' WHERE booking_id = ? AND status = 'PENDING'`,
		bookingID)
	return err
}

// SupersedePendingForMembershipTx is the membership counterpart of
// SupersedePendingForBookingTx.
func (r *PaymentRepo) SupersedePendingForMembershipTx(ctx context.Context, tx *sql.Tx, membershipID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = 'SUPERSEDED' WHERE membership_id = ? AND status = 'PENDING'`,
		membershipID)
	return err
}

// CreateTx inserts a PENDING payment row for a freshly created gateway
// order and populates the generated fields on the provided record.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (booking_id, membership_id, amount_paise, currency, gateway_order_id, status)
		 VALUES (?, ?, ?, ?, ?, 'PENDING')`,
		p.BookingID, p.MembershipID, p.AmountPaise, p.Currency, p.GatewayOrderID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	got, err := scanPayment(tx.QueryRowContext(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE id = ?`, p.ID))
	if err != nil {
		return err
	}
	*p = got
	return nil
}

// GetByOrderIDForUpdateTx loads a payment by its gateway order id under
// a row lock.  The verify path starts here: the lock is what makes a
// re-delivered callback wait and then observe COMPLETED.
func (r *PaymentRepo) GetByOrderIDForUpdateTx(ctx context.Context, tx *sql.Tx, orderID string) (model.Payment, error) {
	return scanPayment(tx.QueryRowContext(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE gateway_order_id = ? FOR UPDATE`, orderID))
}

// MarkCompletedTx records a verified callback on the locked payment.
func (r *PaymentRepo) MarkCompletedTx(ctx context.Context, tx *sql.Tx, id uint64, gatewayPaymentID, signature string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = 'COMPLETED', gateway_payment_id = ?, signature = ? WHERE id = ?`,
		gatewayPaymentID, signature, id)
	return err
}

// MarkFailedTx flags a payment whose callback could not be honored.
func (r *PaymentRepo) MarkFailedTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = 'FAILED' WHERE id = ?`, id)
	return err
}

// ListByUser returns the payments attached to a user's bookings and
// memberships, newest first.
func (r *PaymentRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColsPrefixed("p")+`
		   FROM payments p
		   LEFT JOIN bookings b ON b.id = p.booking_id
		   LEFT JOIN memberships m ON m.id = p.membership_id
		  WHERE b.user_id = ? OR m.user_id = ?
		  ORDER BY p.created_at DESC`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func paymentColsPrefixed(alias string) string {
	return alias + `.id, ` + alias + `.booking_id, ` + alias + `.membership_id, ` +
		alias + `.amount_paise, ` + alias + `.currency, ` + alias + `.gateway_order_id, ` +
		alias + `.gateway_payment_id, ` + alias + `.signature, ` + alias + `.status, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}
