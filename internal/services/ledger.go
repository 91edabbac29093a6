package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	intconfig "tourbooking/internal/config"
	intdb "tourbooking/internal/db"
	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
	"tourbooking/internal/repositories"
	"tourbooking/internal/utils"

	"go.uber.org/zap"
)

// CommitRequest is everything the payment step persists in one transaction.
type CommitRequest struct {
	UserID              int64
	ScheduleID          int64
	Participants        []models.ParticipantInput
	SpecialRequirements string
	PaymentSucceeded    bool
	// FailedStatus is the booking status used when PaymentSucceeded is false.
	FailedStatus  models.BookingStatus
	TransactionID *string
	Now           time.Time
}

func (r CommitRequest) bookingStatus() models.BookingStatus {
	if r.PaymentSucceeded {
		return models.BookingConfirmed
	}
	if r.FailedStatus.Valid() {
		return r.FailedStatus
	}
	return models.BookingPending
}

type CommitResult struct {
	Booking      models.Booking
	Participants []models.BookingParticipant
	Payment      models.Payment
}

// BookingLedger is the durable side of the booking flow.
type BookingLedger interface {
	Commit(ctx context.Context, req CommitRequest) (CommitResult, error)
	FindByReference(ctx context.Context, userID int64, reference string) (models.Booking, error)
	FindForUser(ctx context.Context, userID, bookingID int64) (models.Booking, error)
	Participants(ctx context.Context, bookingID int64) ([]models.BookingParticipant, error)
	LatestPayment(ctx context.Context, bookingID int64) (models.Payment, error)
}

// SQLLedger commits bookings against MySQL.
type SQLLedger struct {
	DB       *sql.DB
	Tours    repositories.TourRepository
	Bookings repositories.BookingRepository
	Payments repositories.PaymentRepository
	Logger   *zap.Logger

	NewReference     func() string
	NewTransactionID func() string
}

func (l SQLLedger) db() *sql.DB {
	if l.DB != nil {
		return l.DB
	}
	return intconfig.DB
}

func (l SQLLedger) reference() string {
	if l.NewReference != nil {
		return l.NewReference()
	}
	return NewReference()
}

func (l SQLLedger) transactionID() string {
	if l.NewTransactionID != nil {
		return l.NewTransactionID()
	}
	return NewTransactionID()
}

// Commit locks the schedule, re-checks capacity and writes the booking with its
// participants and payment. A unique collision on the reference or transaction id
// rolls the attempt back and retries with fresh codes.
func (l SQLLedger) Commit(ctx context.Context, req CommitRequest) (CommitResult, error) {
	for attempt := 1; ; attempt++ {
		res, err := l.commitOnce(ctx, req)
		if err == nil {
			return res, nil
		}
		if !intdb.IsDuplicateKey(err) {
			return CommitResult{}, wrapInternal(err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return CommitResult{}, domain.InternalError{Msg: "commit booking", Err: ctxErr}
		}
		utils.OrNop(l.Logger).Warn("booking commit collided on a unique code, retrying",
			zap.Int("attempt", attempt),
			zap.Int64("schedule_id", req.ScheduleID),
		)
	}
}

func (l SQLLedger) commitOnce(ctx context.Context, req CommitRequest) (CommitResult, error) {
	tx, err := l.db().BeginTx(ctx, nil)
	if err != nil {
		return CommitResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	schedule, err := l.Tours.LockSchedule(ctx, tx, req.ScheduleID)
	if err != nil {
		return CommitResult{}, err
	}
	booked, err := l.Bookings.BookedCount(ctx, tx, schedule.ID)
	if err != nil {
		return CommitResult{}, err
	}
	status := req.bookingStatus()
	capacity := models.NewCapacity(schedule.Tour.MaxParticipants, booked)
	if status.CountsAgainstCapacity() && !capacity.Allows(len(req.Participants)) {
		return CommitResult{}, domain.ConflictError{Resource: "schedule", Msg: capacity.SpotsMessage()}
	}

	ref, err := l.uniqueReference(ctx, tx)
	if err != nil {
		return CommitResult{}, err
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	booking := models.Booking{
		Reference:           ref,
		UserID:              req.UserID,
		ScheduleID:          schedule.ID,
		BookingDate:         now,
		TourDate:            schedule.Date,
		Status:              status,
		SpecialRequirements: strings.TrimSpace(req.SpecialRequirements),
	}
	if err := l.Bookings.Insert(ctx, tx, &booking); err != nil {
		return CommitResult{}, err
	}

	participants, err := l.Bookings.InsertParticipants(ctx, tx, booking.ID, req.Participants)
	if err != nil {
		return CommitResult{}, err
	}
	booking.ParticipantCount = len(participants)
	booking.Schedule = &schedule

	payment := models.Payment{
		BookingID:   booking.ID,
		AmountCents: booking.TotalPrice(),
		PaymentDate: now,
		Status:      models.PaymentFailed,
	}
	if req.PaymentSucceeded {
		payment.Status = models.PaymentCompleted
		txID, err := l.uniqueTransactionID(ctx, tx, req.TransactionID)
		if err != nil {
			return CommitResult{}, err
		}
		payment.TransactionID = &txID
	}
	if err := l.Payments.Insert(ctx, tx, &payment); err != nil {
		return CommitResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return CommitResult{}, fmt.Errorf("commit tx: %w", err)
	}
	return CommitResult{Booking: booking, Participants: participants, Payment: payment}, nil
}

func (l SQLLedger) uniqueReference(ctx context.Context, q intdb.Querier) (string, error) {
	for {
		ref := l.reference()
		exists, err := l.Bookings.ReferenceExists(ctx, q, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
}

// uniqueTransactionID keeps the signal's reference when it is unused and
// generates one otherwise.
func (l SQLLedger) uniqueTransactionID(ctx context.Context, q intdb.Querier, fromSignal *string) (string, error) {
	if fromSignal != nil {
		if candidate := strings.TrimSpace(*fromSignal); candidate != "" {
			exists, err := l.Payments.TransactionExists(ctx, q, candidate)
			if err != nil {
				return "", err
			}
			if !exists {
				return candidate, nil
			}
		}
	}
	for {
		candidate := l.transactionID()
		exists, err := l.Payments.TransactionExists(ctx, q, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func (l SQLLedger) FindByReference(ctx context.Context, userID int64, reference string) (models.Booking, error) {
	return l.Bookings.GetByReference(ctx, userID, reference)
}

func (l SQLLedger) FindForUser(ctx context.Context, userID, bookingID int64) (models.Booking, error) {
	return l.Bookings.GetForUser(ctx, userID, bookingID)
}

func (l SQLLedger) Participants(ctx context.Context, bookingID int64) ([]models.BookingParticipant, error) {
	return l.Bookings.Participants(ctx, bookingID)
}

func (l SQLLedger) LatestPayment(ctx context.Context, bookingID int64) (models.Payment, error) {
	return l.Payments.LatestForBooking(ctx, bookingID)
}
