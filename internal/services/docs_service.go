package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"tourbooking/internal/domain"
	"tourbooking/internal/utils"

	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

// BookingViewer loads a booking of the caller with its participants and payment.
type BookingViewer interface {
	Details(ctx context.Context, userID domain.ID, bookingID int64) (BookingView, error)
}

// DocsService renders the booking confirmation PDF.
type DocsService struct {
	Bookings  BookingViewer
	Logger    *zap.Logger
	RequestID string
	Now       func() time.Time
}

func (s DocsService) ConfirmationPDF(ctx context.Context, userID domain.ID, bookingID int64) ([]byte, string, error) {
	view, err := s.Bookings.Details(ctx, userID, bookingID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.Logger, s.RequestID, "docs", "confirmation_pdf", "confirmation pdf generated",
		zap.Int64("booking_id", bookingID),
	)
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	data, name, err := buildConfirmationPDF(view, now)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "render pdf", Err: err}
	}
	return data, name, nil
}

func buildConfirmationPDF(v BookingView, generatedAt time.Time) ([]byte, string, error) {
	b := v.Booking
	tourName, meeting, start, end := "-", "-", "-", "-"
	if b.Schedule != nil {
		start = safe(utils.TimeHM(b.Schedule.StartTime), "-")
		end = safe(utils.TimeHM(b.Schedule.EndTime), "-")
		if b.Schedule.Tour != nil {
			tourName = safe(b.Schedule.Tour.Name, "-")
			meeting = safe(b.Schedule.Tour.MeetingPoint, "-")
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Confirmation", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING CONFIRMATION")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Reference      : %s", b.Reference),
		fmt.Sprintf("Status         : %s", strings.ToUpper(string(b.Status))),
		fmt.Sprintf("Tour           : %s", tourName),
		fmt.Sprintf("Date           : %s", utils.FormatDate(b.TourDate)),
		fmt.Sprintf("Time           : %s - %s", start, end),
		fmt.Sprintf("Meeting point  : %s", meeting),
		fmt.Sprintf("Booked on      : %s", utils.FormatDateTime(b.BookingDate)),
		fmt.Sprintf("Party size     : %d", len(v.Participants)+1),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	if len(v.Participants) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Participants:")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for i, p := range v.Participants {
			line := fmt.Sprintf("%d) %s", i+1, p.FullName)
			if p.Age != nil {
				line += fmt.Sprintf(" (age %d)", *p.Age)
			}
			if p.Notes != "" {
				line += " - " + p.Notes
			}
			pdf.MultiCell(0, 6, line, "", "", false)
		}
	}

	if req := strings.TrimSpace(b.SpecialRequirements); req != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Special requirements:")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, req, "", "", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+v.TotalPrice)
	pdf.Ln(8)
	if v.Payment != nil {
		pdf.SetFont("Helvetica", "", 11)
		payment := "Payment: " + string(v.Payment.Status)
		if v.Payment.TransactionID != nil {
			payment += " (" + *v.Payment.TransactionID + ")"
		}
		pdf.Cell(0, 7, payment)
		pdf.Ln(10)
	}

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Generated "+utils.FormatDateTime(generatedAt)+". Please bring this confirmation to the meeting point.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("BOOKING_%s_%s.pdf", utils.SafeFilenamePart(b.Reference), utils.SafeFilenamePart(tourName))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
