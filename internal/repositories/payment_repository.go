package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "tourbooking/internal/config"
	intdb "tourbooking/internal/db"
	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

func (r PaymentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Insert stores p and sets its ID. A nil TransactionID is stored as NULL.
func (r PaymentRepository) Insert(ctx context.Context, q intdb.Querier, p *models.Payment) error {
	if q == nil {
		q = r.db()
	}
	var txID any
	if p.TransactionID != nil {
		txID = intdb.NullIfEmpty(*p.TransactionID)
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO payments (booking_id, amount_cents, payment_date, status, transaction_id)
		VALUES (?, ?, ?, ?, ?)`,
		p.BookingID, p.AmountCents, p.PaymentDate, string(p.Status), txID,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert payment id: %w", err)
	}
	p.ID = id
	return nil
}

func (r PaymentRepository) TransactionExists(ctx context.Context, q intdb.Querier, transactionID string) (bool, error) {
	if q == nil {
		q = r.db()
	}
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM payments WHERE transaction_id = ? LIMIT 1`, transactionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check transaction id: %w", err)
	}
	return true, nil
}

// LatestForBooking returns the most recent payment attempt of a booking.
func (r PaymentRepository) LatestForBooking(ctx context.Context, bookingID int64) (models.Payment, error) {
	var p models.Payment
	var status string
	var txID sql.NullString
	err := r.db().QueryRowContext(ctx, `
		SELECT id, booking_id, amount_cents, payment_date, status, transaction_id
		FROM payments
		WHERE booking_id = ?
		ORDER BY payment_date DESC, id DESC
		LIMIT 1`, bookingID).Scan(&p.ID, &p.BookingID, &p.AmountCents, &p.PaymentDate, &status, &txID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment", Err: err}
		}
		return models.Payment{}, fmt.Errorf("get payment: %w", err)
	}
	p.Status = models.PaymentStatus(status)
	if txID.Valid {
		v := txID.String
		p.TransactionID = &v
	}
	return p, nil
}
