package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "tourbooking/internal/config"
	intdb "tourbooking/internal/db"
	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
)

const tourColumns = `t.id, t.name, t.description, t.duration_hours, t.price_cents, t.max_participants,
	t.highlights, t.what_included, t.what_to_bring, t.meeting_point, t.image_url`

const scheduleColumns = `s.id, s.tour_id, s.day, s.date, s.start_time, s.end_time`

type rowScanner interface {
	Scan(dest ...any) error
}

type TourRepository struct {
	DB *sql.DB
}

func (r TourRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// List returns tours alphabetically, optionally filtered by a case-insensitive name substring.
func (r TourRepository) List(ctx context.Context, search string, limit, offset int) ([]models.Tour, error) {
	where, args := tourSearchClause(search)
	args = append(args, limit, offset)

	rows, err := r.db().QueryContext(ctx, `SELECT `+tourColumns+` FROM tours t`+where+` ORDER BY t.name ASC, t.id ASC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tours: %w", err)
	}
	defer rows.Close()

	out := []models.Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tour: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r TourRepository) Count(ctx context.Context, search string) (int, error) {
	where, args := tourSearchClause(search)
	var n int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM tours t`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tours: %w", err)
	}
	return n, nil
}

func (r TourRepository) GetByID(ctx context.Context, id int64) (models.Tour, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+tourColumns+` FROM tours t WHERE t.id = ? LIMIT 1`, id)
	t, err := scanTour(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Tour{}, domain.NotFoundError{Resource: "tour", Err: err}
		}
		return models.Tour{}, fmt.Errorf("get tour: %w", err)
	}
	return t, nil
}

// ListSchedules returns a tour's schedules in calendar order.
func (r TourRepository) ListSchedules(ctx context.Context, tourID int64) ([]models.TourSchedule, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+scheduleColumns+` FROM tour_schedules s WHERE s.tour_id = ? ORDER BY s.date ASC, s.start_time ASC, s.id ASC`, tourID)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	out := []models.TourSchedule{}
	for rows.Next() {
		var s models.TourSchedule
		if err := rows.Scan(&s.ID, &s.TourID, &s.Day, &s.Date, &s.StartTime, &s.EndTime); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSchedule loads a schedule together with its tour.
func (r TourRepository) GetSchedule(ctx context.Context, id int64) (models.TourSchedule, error) {
	return r.getSchedule(ctx, r.db(), id, false)
}

// LockSchedule loads a schedule with SELECT ... FOR UPDATE. q must be a transaction;
// the row lock serializes concurrent commits against the same schedule.
func (r TourRepository) LockSchedule(ctx context.Context, q intdb.Querier, id int64) (models.TourSchedule, error) {
	return r.getSchedule(ctx, q, id, true)
}

func (r TourRepository) getSchedule(ctx context.Context, q intdb.Querier, id int64, forUpdate bool) (models.TourSchedule, error) {
	query := `SELECT ` + scheduleColumns + `, ` + tourColumns + `
		FROM tour_schedules s
		JOIN tours t ON t.id = s.tour_id
		WHERE s.id = ? LIMIT 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var s models.TourSchedule
	var t models.Tour
	err := q.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.TourID, &s.Day, &s.Date, &s.StartTime, &s.EndTime,
		&t.ID, &t.Name, &t.Description, &t.DurationHours, &t.PriceCents, &t.MaxParticipants,
		&t.Highlights, &t.WhatIncluded, &t.WhatToBring, &t.MeetingPoint, &t.ImageURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TourSchedule{}, domain.NotFoundError{Resource: "schedule", Err: err}
		}
		return models.TourSchedule{}, fmt.Errorf("get schedule: %w", err)
	}
	s.Tour = &t
	return s, nil
}

func scanTour(row rowScanner) (models.Tour, error) {
	var t models.Tour
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.DurationHours, &t.PriceCents, &t.MaxParticipants,
		&t.Highlights, &t.WhatIncluded, &t.WhatToBring, &t.MeetingPoint, &t.ImageURL,
	)
	return t, err
}

func tourSearchClause(search string) (string, []any) {
	search = strings.TrimSpace(search)
	if search == "" {
		return "", nil
	}
	return ` WHERE LOWER(t.name) LIKE ?`, []any{"%" + escapeLike(strings.ToLower(search)) + "%"}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
