package services

import (
	"context"
	"testing"
	"time"

	"tourbooking/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

var bookingRowColumns = append([]string{
	"id", "reference", "user_id", "schedule_id", "booking_date", "tour_date", "status", "special_requirements", "participant_count",
}, scheduleRowColumns...)

func TestListBookingsUpcomingPaginates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	svc := ListingService{
		Tours:    repositories.TourRepository{DB: db},
		Bookings: repositories.BookingRepository{DB: db},
		Now:      func() time.Time { return time.Date(2026, 10, 17, 15, 30, 0, 0, time.Local) },
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings b WHERE b.user_id = \? AND b.tour_date >= \?`).
		WithArgs(int64(3), "2026-10-17", "confirmed", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(12))
	mock.ExpectQuery(`ORDER BY b.booking_date DESC, b.id DESC LIMIT \? OFFSET \?`).
		WithArgs(int64(3), "2026-10-17", "confirmed", "pending", 10, 10).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).AddRow(
			5, "ABCDEF123456", 3, 7, time.Date(2026, 10, 1, 9, 0, 0, 0, time.Local), time.Date(2026, 10, 24, 0, 0, 0, 0, time.Local), "confirmed", "", 2,
			7, 1, "saturday", time.Date(2026, 10, 24, 0, 0, 0, 0, time.Local), "09:00:00", "12:00:00",
			1, "Old Town Walk", "A walk", 3, 2500, 10,
			"", "", "", "Main square", "",
		))

	page, err := svc.ListBookings(context.Background(), 3, "UPCOMING", "7")
	if err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	}
	if page.Status != repositories.FilterUpcoming {
		t.Fatalf("expected upcoming filter, got %q", page.Status)
	}
	if page.Pagination.Page != 2 || page.Pagination.TotalPages != 2 || page.Pagination.HasNext || !page.Pagination.HasPrevious {
		t.Fatalf("unexpected pagination %+v", page.Pagination)
	}
	if len(page.Bookings) != 1 || page.Bookings[0].TotalPriceCents != 7500 {
		t.Fatalf("unexpected bookings %+v", page.Bookings)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListBookingsUnknownStatusMeansAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	svc := ListingService{Bookings: repositories.BookingRepository{DB: db}}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings b WHERE b.user_id = \?$`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`LIMIT \? OFFSET \?`).
		WithArgs(int64(3), 10, 0).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns))

	page, err := svc.ListBookings(context.Background(), 3, "archived", "abc")
	if err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	}
	if page.Status != repositories.FilterAll || page.Pagination.Page != 1 || len(page.Bookings) != 0 {
		t.Fatalf("unexpected page %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTourDetailCarriesCapacityPerSchedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	svc := ListingService{
		Tours:    repositories.TourRepository{DB: db},
		Bookings: repositories.BookingRepository{DB: db},
	}

	mock.ExpectQuery(`FROM tours t WHERE t.id = \?`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns[6:]).AddRow(
			1, "Old Town Walk", "A walk", 3, 2500, 4, "Castle\n\nRiver", "Guide", "", "Main square", "",
		))
	mock.ExpectQuery(`FROM tour_schedules s WHERE s.tour_id = \?`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns[:6]).
			AddRow(7, 1, "saturday", time.Date(2026, 10, 24, 0, 0, 0, 0, time.Local), "09:00:00", "12:00:00").
			AddRow(8, 1, "sunday", time.Date(2026, 10, 25, 0, 0, 0, 0, time.Local), "09:00:00", "12:00:00"))
	mock.ExpectQuery(`SELECT COALESCE\(SUM`).WithArgs(int64(7), "confirmed").WillReturnRows(sqlmock.NewRows([]string{"b"}).AddRow(3))
	mock.ExpectQuery(`SELECT COALESCE\(SUM`).WithArgs(int64(8), "confirmed").WillReturnRows(sqlmock.NewRows([]string{"b"}).AddRow(0))

	detail, err := svc.TourDetail(context.Background(), 1)
	if err != nil {
		t.Fatalf("TourDetail returned error: %v", err)
	}
	if len(detail.Highlights) != 2 {
		t.Fatalf("expected 2 highlights, got %v", detail.Highlights)
	}
	if len(detail.Schedules) != 2 || detail.Schedules[0].Capacity.Remaining != 1 || detail.Schedules[1].Capacity.Remaining != 4 {
		t.Fatalf("unexpected schedules %+v", detail.Schedules)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
