package models

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment records the outcome of an externally performed payment attempt.
type Payment struct {
	ID            int64         `json:"id"`
	BookingID     int64         `json:"booking_id"`
	AmountCents   int64         `json:"amount_cents"`
	PaymentDate   time.Time     `json:"payment_date"`
	Status        PaymentStatus `json:"status"`
	TransactionID *string       `json:"transaction_id"`
}

// PaymentSignal is the external payment outcome posted to the payment step.
type PaymentSignal struct {
	Success   bool    `json:"paymentSuccess"`
	Reference *string `json:"reference"`
}
