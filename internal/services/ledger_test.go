package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
	"tourbooking/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var scheduleRowColumns = []string{
	"id", "tour_id", "day", "date", "start_time", "end_time",
	"id", "name", "description", "duration_hours", "price_cents", "max_participants",
	"highlights", "what_included", "what_to_bring", "meeting_point", "image_url",
}

func lockedScheduleRow(maxParticipants int) *sqlmock.Rows {
	return sqlmock.NewRows(scheduleRowColumns).AddRow(
		7, 1, "saturday", time.Date(2026, 10, 24, 0, 0, 0, 0, time.Local), "09:00:00", "12:00:00",
		1, "Old Town Walk", "A walk", 3, 2500, maxParticipants,
		"", "", "", "Main square", "",
	)
}

func newTestLedger(t *testing.T, refs ...string) (SQLLedger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	next := 0
	return SQLLedger{
		DB:       db,
		Tours:    repositories.TourRepository{DB: db},
		Bookings: repositories.BookingRepository{DB: db},
		Payments: repositories.PaymentRepository{DB: db},
		NewReference: func() string {
			ref := refs[next%len(refs)]
			next++
			return ref
		},
		NewTransactionID: func() string { return "TXN-generated" },
	}, mock
}

func TestLedgerCommitWritesBookingParticipantsAndPayment(t *testing.T) {
	ledger, mock := newTestLedger(t, "TAKEN0000001", "FREE00000001")

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM tour_schedules s\s+JOIN tours t .* FOR UPDATE`).WithArgs(int64(7)).WillReturnRows(lockedScheduleRow(10))
	mock.ExpectQuery(`SELECT COALESCE\(SUM`).WithArgs(int64(7), "confirmed").WillReturnRows(sqlmock.NewRows([]string{"booked"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM bookings WHERE reference = ?`)).WithArgs("TAKEN0000001").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM bookings WHERE reference = ?`)).WithArgs("FREE00000001").WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(`INSERT INTO bookings`).WithArgs("FREE00000001", int64(3), int64(7), sqlmock.AnyArg(), "2026-10-24", "confirmed", "window seat").WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(`INSERT INTO booking_participants`).WithArgs(int64(11), "Kofi", nil, "").WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec(`INSERT INTO booking_participants`).WithArgs(int64(11), "Esi", 9, "").WillReturnResult(sqlmock.NewResult(22, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM payments WHERE transaction_id = ?`)).WithArgs("PAY-1").WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(`INSERT INTO payments`).WithArgs(int64(11), int64(7500), sqlmock.AnyArg(), "completed", "PAY-1").WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectCommit()

	age := 9
	ref := "PAY-1"
	res, err := ledger.Commit(context.Background(), CommitRequest{
		UserID:              3,
		ScheduleID:          7,
		Participants:        []models.ParticipantInput{{FullName: "Kofi"}, {FullName: "Esi", Age: &age}},
		SpecialRequirements: "window seat",
		PaymentSucceeded:    true,
		TransactionID:       &ref,
		Now:                 time.Date(2026, 10, 17, 10, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if res.Booking.Reference != "FREE00000001" || res.Booking.ID != 11 {
		t.Fatalf("unexpected booking %+v", res.Booking)
	}
	if len(res.Participants) != 2 || res.Payment.AmountCents != 7500 || *res.Payment.TransactionID != "PAY-1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLedgerFailedPaymentStoresNullTransaction(t *testing.T) {
	ledger, mock := newTestLedger(t, "FREE00000002")

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(7)).WillReturnRows(lockedScheduleRow(4))
	mock.ExpectQuery(`SELECT COALESCE\(SUM`).WithArgs(int64(7), "confirmed").WillReturnRows(sqlmock.NewRows([]string{"booked"}).AddRow(0))
	mock.ExpectQuery(`SELECT 1 FROM bookings`).WithArgs("FREE00000002").WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(`INSERT INTO bookings`).WithArgs("FREE00000002", int64(3), int64(7), sqlmock.AnyArg(), "2026-10-24", "pending", "").WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec(`INSERT INTO payments`).WithArgs(int64(12), int64(2500), sqlmock.AnyArg(), "failed", nil).WillReturnResult(sqlmock.NewResult(32, 1))
	mock.ExpectCommit()

	res, err := ledger.Commit(context.Background(), CommitRequest{UserID: 3, ScheduleID: 7, FailedStatus: models.BookingPending})
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if res.Payment.Status != models.PaymentFailed || res.Payment.TransactionID != nil {
		t.Fatalf("unexpected payment %+v", res.Payment)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLedgerRejectsWhenCapacityWasTaken(t *testing.T) {
	ledger, mock := newTestLedger(t, "FREE00000003")

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(7)).WillReturnRows(lockedScheduleRow(4))
	mock.ExpectQuery(`SELECT COALESCE\(SUM`).WithArgs(int64(7), "confirmed").WillReturnRows(sqlmock.NewRows([]string{"booked"}).AddRow(3))
	mock.ExpectRollback()

	_, err := ledger.Commit(context.Background(), CommitRequest{
		UserID:           3,
		ScheduleID:       7,
		Participants:     []models.ParticipantInput{{FullName: "Kofi"}},
		PaymentSucceeded: true,
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != "schedule conflict: Only 1 total spots available." {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLedgerRechecksCapacityForConfirmedFailedPayment(t *testing.T) {
	ledger, mock := newTestLedger(t, "FREE00000005")

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(7)).WillReturnRows(lockedScheduleRow(4))
	mock.ExpectQuery(`SELECT COALESCE\(SUM`).WithArgs(int64(7), "confirmed").WillReturnRows(sqlmock.NewRows([]string{"booked"}).AddRow(3))
	mock.ExpectRollback()

	_, err := ledger.Commit(context.Background(), CommitRequest{
		UserID:           3,
		ScheduleID:       7,
		Participants:     []models.ParticipantInput{{FullName: "Kofi"}},
		PaymentSucceeded: false,
		FailedStatus:     models.BookingConfirmed,
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLedgerRetriesOnDuplicateReference(t *testing.T) {
	ledger, mock := newTestLedger(t, "RACE00000001", "FREE00000004")

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(7)).WillReturnRows(lockedScheduleRow(4))
	mock.ExpectQuery(`SELECT COALESCE\(SUM`).WillReturnRows(sqlmock.NewRows([]string{"booked"}).AddRow(0))
	mock.ExpectQuery(`SELECT 1 FROM bookings`).WithArgs("RACE00000001").WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(`INSERT INTO bookings`).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(7)).WillReturnRows(lockedScheduleRow(4))
	mock.ExpectQuery(`SELECT COALESCE\(SUM`).WillReturnRows(sqlmock.NewRows([]string{"booked"}).AddRow(0))
	mock.ExpectQuery(`SELECT 1 FROM bookings`).WithArgs("FREE00000004").WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(`INSERT INTO bookings`).WillReturnResult(sqlmock.NewResult(13, 1))
	mock.ExpectQuery(`SELECT 1 FROM payments`).WithArgs("TXN-generated").WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(`INSERT INTO payments`).WillReturnResult(sqlmock.NewResult(33, 1))
	mock.ExpectCommit()

	res, err := ledger.Commit(context.Background(), CommitRequest{UserID: 3, ScheduleID: 7, PaymentSucceeded: true})
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if res.Booking.Reference != "FREE00000004" || *res.Payment.TransactionID != "TXN-generated" {
		t.Fatalf("unexpected result %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNewReferenceShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		ref := NewReference()
		if !IsReference(ref) {
			t.Fatalf("reference %q does not match [A-Z0-9]{12}", ref)
		}
		seen[ref] = true
	}
	if len(seen) < 195 {
		t.Fatalf("references repeat too often: %d unique of 200", len(seen))
	}
}
