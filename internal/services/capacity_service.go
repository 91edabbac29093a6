package services

import (
	"context"

	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
	"tourbooking/internal/repositories"
)

// ScheduleCatalog is the read side the capacity check needs.
type ScheduleCatalog interface {
	GetSchedule(ctx context.Context, id int64) (models.TourSchedule, error)
	BookedCount(ctx context.Context, scheduleID int64) (int, error)
}

// SQLCatalog reads schedules and booked counts from the repositories.
type SQLCatalog struct {
	Tours    repositories.TourRepository
	Bookings repositories.BookingRepository
}

func (c SQLCatalog) GetSchedule(ctx context.Context, id int64) (models.TourSchedule, error) {
	return c.Tours.GetSchedule(ctx, id)
}

func (c SQLCatalog) BookedCount(ctx context.Context, scheduleID int64) (int, error) {
	return c.Bookings.BookedCount(ctx, nil, scheduleID)
}

type CapacityService struct {
	Catalog ScheduleCatalog
}

// ForSchedule loads a schedule with its tour and derives its current capacity.
func (s CapacityService) ForSchedule(ctx context.Context, scheduleID int64) (models.TourSchedule, models.Capacity, error) {
	if scheduleID <= 0 {
		return models.TourSchedule{}, models.Capacity{}, domain.NotFoundError{Resource: "schedule"}
	}
	schedule, err := s.Catalog.GetSchedule(ctx, scheduleID)
	if err != nil {
		return models.TourSchedule{}, models.Capacity{}, wrapInternal(err)
	}
	capacity, err := s.Of(ctx, schedule)
	if err != nil {
		return models.TourSchedule{}, models.Capacity{}, err
	}
	return schedule, capacity, nil
}

// Of derives capacity for an already loaded schedule.
func (s CapacityService) Of(ctx context.Context, schedule models.TourSchedule) (models.Capacity, error) {
	booked, err := s.Catalog.BookedCount(ctx, schedule.ID)
	if err != nil {
		return models.Capacity{}, domain.InternalError{Msg: "count bookings", Err: err}
	}
	ceiling := 0
	if schedule.Tour != nil {
		ceiling = schedule.Tour.MaxParticipants
	}
	return models.NewCapacity(ceiling, booked), nil
}

// wrapInternal passes typed domain errors through and wraps everything else.
func wrapInternal(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsNotFound(err) || domain.IsValidation(err) || domain.IsConflict(err) ||
		domain.IsStaleSession(err) || domain.IsExternal(err) || domain.IsInternal(err) {
		return err
	}
	return domain.InternalError{Err: err}
}
