package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intconfig "tourbooking/internal/config"
	intdb "tourbooking/internal/db"
	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
	"tourbooking/internal/utils"
)

// Booking status filters understood by ListForUser.
const (
	FilterAll       = "all"
	FilterUpcoming  = "upcoming"
	FilterConfirmed = "confirmed"
	FilterPending   = "pending"
	FilterCancelled = "cancelled"
)

// BookingFilter narrows a user's booking list. Today is needed by FilterUpcoming.
type BookingFilter struct {
	Status string
	Today  time.Time
}

const bookingSelect = `SELECT b.id, b.reference, b.user_id, b.schedule_id, b.booking_date, b.tour_date, b.status, b.special_requirements,
		(SELECT COUNT(*) FROM booking_participants p WHERE p.booking_id = b.id) AS participant_count,
		` + scheduleColumns + `, ` + tourColumns + `
	FROM bookings b
	JOIN tour_schedules s ON s.id = b.schedule_id
	JOIN tours t ON t.id = s.tour_id`

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// BookedCount sums the booker plus participants over confirmed bookings of a schedule.
func (r BookingRepository) BookedCount(ctx context.Context, q intdb.Querier, scheduleID int64) (int, error) {
	if q == nil {
		q = r.db()
	}
	var booked int64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(1 + (SELECT COUNT(*) FROM booking_participants p WHERE p.booking_id = b.id)), 0)
		FROM bookings b
		WHERE b.schedule_id = ? AND b.status = ?`, scheduleID, string(models.BookingConfirmed)).Scan(&booked)
	if err != nil {
		return 0, fmt.Errorf("booked count: %w", err)
	}
	return int(booked), nil
}

func (r BookingRepository) ReferenceExists(ctx context.Context, q intdb.Querier, reference string) (bool, error) {
	if q == nil {
		q = r.db()
	}
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE reference = ? LIMIT 1`, reference).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}
	return true, nil
}

// Insert stores b and sets its ID.
func (r BookingRepository) Insert(ctx context.Context, q intdb.Querier, b *models.Booking) error {
	if q == nil {
		q = r.db()
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO bookings (reference, user_id, schedule_id, booking_date, tour_date, status, special_requirements)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Reference, b.UserID, b.ScheduleID, b.BookingDate, utils.FormatDate(b.TourDate), string(b.Status), b.SpecialRequirements,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert booking id: %w", err)
	}
	b.ID = id
	return nil
}

func (r BookingRepository) InsertParticipants(ctx context.Context, q intdb.Querier, bookingID int64, inputs []models.ParticipantInput) ([]models.BookingParticipant, error) {
	if q == nil {
		q = r.db()
	}
	out := make([]models.BookingParticipant, 0, len(inputs))
	for _, in := range inputs {
		res, err := q.ExecContext(ctx, `
			INSERT INTO booking_participants (booking_id, full_name, age, notes)
			VALUES (?, ?, ?, ?)`,
			bookingID, strings.TrimSpace(in.FullName), intdb.NullIfNil(in.Age), strings.TrimSpace(in.Notes),
		)
		if err != nil {
			return nil, fmt.Errorf("insert participant: %w", err)
		}
		id, _ := res.LastInsertId()
		out = append(out, models.BookingParticipant{
			ID:        id,
			BookingID: bookingID,
			FullName:  strings.TrimSpace(in.FullName),
			Age:       in.Age,
			Notes:     strings.TrimSpace(in.Notes),
		})
	}
	return out, nil
}

// GetByReference finds a booking by reference owned by userID.
func (r BookingRepository) GetByReference(ctx context.Context, userID int64, reference string) (models.Booking, error) {
	row := r.db().QueryRowContext(ctx, bookingSelect+` WHERE b.reference = ? AND b.user_id = ? LIMIT 1`, reference, userID)
	return scanBookingOrNotFound(row)
}

// GetForUser finds a booking by id owned by userID.
func (r BookingRepository) GetForUser(ctx context.Context, userID, bookingID int64) (models.Booking, error) {
	row := r.db().QueryRowContext(ctx, bookingSelect+` WHERE b.id = ? AND b.user_id = ? LIMIT 1`, bookingID, userID)
	return scanBookingOrNotFound(row)
}

// ListForUser returns a page of the user's bookings, most recent first.
func (r BookingRepository) ListForUser(ctx context.Context, userID int64, f BookingFilter, limit, offset int) ([]models.Booking, error) {
	where, args := bookingFilterClause(userID, f)
	args = append(args, limit, offset)

	rows, err := r.db().QueryContext(ctx, bookingSelect+where+` ORDER BY b.booking_date DESC, b.id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BookingRepository) CountForUser(ctx context.Context, userID int64, f BookingFilter) (int, error) {
	where, args := bookingFilterClause(userID, f)
	var n int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings b`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

// Participants lists a booking's participants by name.
func (r BookingRepository) Participants(ctx context.Context, bookingID int64) ([]models.BookingParticipant, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT id, booking_id, full_name, age, notes
		FROM booking_participants
		WHERE booking_id = ?
		ORDER BY full_name ASC, id ASC`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	out := []models.BookingParticipant{}
	for rows.Next() {
		var p models.BookingParticipant
		var age sql.NullInt64
		if err := rows.Scan(&p.ID, &p.BookingID, &p.FullName, &age, &p.Notes); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		if age.Valid {
			v := int(age.Int64)
			p.Age = &v
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Reminder is a confirmed booking joined with what a reminder message needs.
type Reminder struct {
	Booking   models.Booking
	UserEmail string
	UserName  string
}

// ConfirmedOn lists confirmed bookings whose tour happens on day.
func (r BookingRepository) ConfirmedOn(ctx context.Context, day time.Time) ([]Reminder, error) {
	query := `SELECT b.id, b.reference, b.user_id, b.schedule_id, b.booking_date, b.tour_date, b.status, b.special_requirements,
			(SELECT COUNT(*) FROM booking_participants p WHERE p.booking_id = b.id) AS participant_count,
			` + scheduleColumns + `, ` + tourColumns + `,
			u.email, TRIM(CONCAT(u.first_name, ' ', u.last_name))
		FROM bookings b
		JOIN tour_schedules s ON s.id = b.schedule_id
		JOIN tours t ON t.id = s.tour_id
		JOIN users u ON u.id = b.user_id
		WHERE b.status = ? AND b.tour_date = ?
		ORDER BY b.id ASC`

	rows, err := r.db().QueryContext(ctx, query, string(models.BookingConfirmed), utils.FormatDate(day))
	if err != nil {
		return nil, fmt.Errorf("list confirmed bookings: %w", err)
	}
	defer rows.Close()

	out := []Reminder{}
	for rows.Next() {
		var rem Reminder
		b, err := scanBooking(rows, &rem.UserEmail, &rem.UserName)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		rem.Booking = b
		out = append(out, rem)
	}
	return out, rows.Err()
}

func bookingFilterClause(userID int64, f BookingFilter) (string, []any) {
	where := ` WHERE b.user_id = ?`
	args := []any{userID}

	switch f.Status {
	case FilterUpcoming:
		where += ` AND b.tour_date >= ? AND b.status IN (?, ?)`
		args = append(args, utils.FormatDate(f.Today), string(models.BookingConfirmed), string(models.BookingPending))
	case FilterConfirmed, FilterPending, FilterCancelled:
		where += ` AND b.status = ?`
		args = append(args, f.Status)
	}
	return where, args
}

func scanBookingOrNotFound(row *sql.Row) (models.Booking, error) {
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func scanBooking(row rowScanner, extra ...any) (models.Booking, error) {
	var b models.Booking
	var s models.TourSchedule
	var t models.Tour
	var status string

	dest := []any{
		&b.ID, &b.Reference, &b.UserID, &b.ScheduleID, &b.BookingDate, &b.TourDate, &status, &b.SpecialRequirements,
		&b.ParticipantCount,
		&s.ID, &s.TourID, &s.Day, &s.Date, &s.StartTime, &s.EndTime,
		&t.ID, &t.Name, &t.Description, &t.DurationHours, &t.PriceCents, &t.MaxParticipants,
		&t.Highlights, &t.WhatIncluded, &t.WhatToBring, &t.MeetingPoint, &t.ImageURL,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return models.Booking{}, err
	}
	b.Status = models.BookingStatus(status)
	s.Tour = &t
	b.Schedule = &s
	return b, nil
}
