package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
)

type viewerFunc func(ctx context.Context, userID domain.ID, bookingID int64) (BookingView, error)

func (f viewerFunc) Details(ctx context.Context, userID domain.ID, bookingID int64) (BookingView, error) {
	return f(ctx, userID, bookingID)
}

func TestDocsServiceConfirmationPDF(t *testing.T) {
	age := 12
	txID := "PAY-9"
	viewer := viewerFunc(func(_ context.Context, userID domain.ID, bookingID int64) (BookingView, error) {
		if userID != 3 {
			return BookingView{}, domain.NotFoundError{Resource: "booking"}
		}
		return BookingView{
			Booking: models.Booking{
				ID:          bookingID,
				Reference:   "ABCDEF123456",
				Status:      models.BookingConfirmed,
				TourDate:    time.Date(2026, 10, 24, 0, 0, 0, 0, time.Local),
				BookingDate: time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local),
				Schedule: &models.TourSchedule{
					StartTime: "09:00:00",
					EndTime:   "12:00:00",
					Tour:      &models.Tour{Name: "Old Town Walk", MeetingPoint: "Main square"},
				},
			},
			Participants: []models.BookingParticipant{{FullName: "Kofi", Age: &age}},
			Payment:      &models.Payment{Status: models.PaymentCompleted, TransactionID: &txID},
			TotalPrice:   "50.00",
		}, nil
	})

	svc := DocsService{Bookings: viewer}
	pdf, filename, err := svc.ConfirmationPDF(context.Background(), 3, 5)
	if err != nil {
		t.Fatalf("ConfirmationPDF returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a pdf")
	}
	if !strings.HasPrefix(filename, "BOOKING_ABCDEF123456_") || !strings.HasSuffix(filename, ".pdf") {
		t.Fatalf("unexpected filename %q", filename)
	}

	if _, _, err := svc.ConfirmationPDF(context.Background(), 4, 5); !domain.IsNotFound(err) {
		t.Fatalf("expected not found for another user, got %v", err)
	}
}
