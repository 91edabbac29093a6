package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"tourbooking/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestBookedCountSumsConfirmedParties(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(1 \+ \(SELECT COUNT\(\*\) FROM booking_participants`).
		WithArgs(int64(7), "confirmed").
		WillReturnRows(sqlmock.NewRows([]string{"booked"}).AddRow(3))

	got, err := BookingRepository{DB: db}.BookedCount(context.Background(), nil, 7)
	if err != nil {
		t.Fatalf("BookedCount returned error: %v", err)
	}
	if got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByReferenceScopedToUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE b.reference = ? AND b.user_id = ?`)).
		WithArgs("ABCDEF123456", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = BookingRepository{DB: db}.GetByReference(context.Background(), 9, "ABCDEF123456")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpcomingFilterExcludesPastTours(t *testing.T) {
	where, args := bookingFilterClause(3, BookingFilter{Status: FilterUpcoming, Today: time.Date(2026, 10, 17, 0, 0, 0, 0, time.Local)})
	if where != ` WHERE b.user_id = ? AND b.tour_date >= ? AND b.status IN (?, ?)` {
		t.Fatalf("unexpected clause %q", where)
	}
	if len(args) != 4 || args[1] != "2026-10-17" {
		t.Fatalf("unexpected args %v", args)
	}

	where, args = bookingFilterClause(3, BookingFilter{Status: FilterCancelled})
	if where != ` WHERE b.user_id = ? AND b.status = ?` || args[1] != "cancelled" {
		t.Fatalf("unexpected cancelled clause %q %v", where, args)
	}
}

func TestTourSearchEscapesWildcards(t *testing.T) {
	where, args := tourSearchClause("  100%_Fun ")
	if where == "" || args[0] != `%100\%\_fun%` {
		t.Fatalf("unexpected search %q %v", where, args)
	}
	if where, _ := tourSearchClause("   "); where != "" {
		t.Fatalf("blank search should not filter")
	}
}
