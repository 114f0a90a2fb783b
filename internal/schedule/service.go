package schedule

import (
	"context"
	"time"

	"bookwise/internal/apperr"
	"bookwise/internal/booking"
	"bookwise/internal/directory"
	"bookwise/internal/logger"
	"bookwise/internal/metrics"
	"bookwise/internal/timeutil"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// BookingStore is the slice of the booking layer materialization needs.
type BookingStore interface {
	CreateInstance(ctx context.Context, b *booking.Booking) (bool, error)
	DeleteFutureBySchedule(ctx context.Context, scheduleID int64, from time.Time) (int64, error)
}

type Service interface {
	Create(ctx context.Context, organizationID int64, req CreateScheduleRequest) (*RecurringSchedule, error)
	Get(ctx context.Context, organizationID, scheduleID int64) (*RecurringSchedule, error)
	Update(ctx context.Context, organizationID, scheduleID int64, req CreateScheduleRequest) (*RecurringSchedule, error)
	// Delete removes the schedule and cancels its not-yet-started
	// materialized bookings.
	Delete(ctx context.Context, organizationID, scheduleID int64) error
	ListByService(ctx context.Context, organizationID, serviceID int64) ([]RecurringSchedule, error)
	Occurrences(ctx context.Context, organizationID, scheduleID int64, windowStart, windowEnd time.Time) ([]time.Time, error)
	Materialize(ctx context.Context, organizationID, scheduleID int64, horizon time.Duration) (*MaterializeResponse, error)
	AddException(ctx context.Context, organizationID, scheduleID int64, req CreateExceptionRequest) (*RecurrenceException, error)
	ListExceptions(ctx context.Context, organizationID, scheduleID int64) ([]RecurrenceException, error)
	RemoveException(ctx context.Context, organizationID, scheduleID, exceptionID int64) error
}

type service struct {
	repo      Repository
	engine    *Engine
	bookings  BookingStore
	directory directory.Repository
	now       func() time.Time
}

func NewService(repo Repository, engine *Engine, bookings BookingStore, dir directory.Repository) Service {
	return &service{
		repo:      repo,
		engine:    engine,
		bookings:  bookings,
		directory: dir,
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, organizationID int64, req CreateScheduleRequest) (*RecurringSchedule, error) {
	sched, err := s.fromRequest(ctx, organizationID, req)
	if err != nil {
		return nil, err
	}

	if err := s.engine.Validate(sched); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, sched)
}

func (s *service) Get(ctx context.Context, organizationID, scheduleID int64) (*RecurringSchedule, error) {
	return s.repo.GetByID(ctx, organizationID, scheduleID)
}

func (s *service) Update(ctx context.Context, organizationID, scheduleID int64, req CreateScheduleRequest) (*RecurringSchedule, error) {
	if _, err := s.repo.GetByID(ctx, organizationID, scheduleID); err != nil {
		return nil, err
	}

	sched, err := s.fromRequest(ctx, organizationID, req)
	if err != nil {
		return nil, err
	}
	sched.ID = scheduleID

	if err := s.engine.Validate(sched); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, sched); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, organizationID, scheduleID)
}

func (s *service) Delete(ctx context.Context, organizationID, scheduleID int64) error {
	if _, err := s.repo.GetByID(ctx, organizationID, scheduleID); err != nil {
		return err
	}

	deleted, err := s.bookings.DeleteFutureBySchedule(ctx, scheduleID, s.now())
	if err != nil {
		return err
	}
	if deleted > 0 {
		logger.Info("removed future bookings of deleted schedule",
			"schedule_id", scheduleID, "bookings", deleted)
	}

	return s.repo.Delete(ctx, organizationID, scheduleID)
}

func (s *service) ListByService(ctx context.Context, organizationID, serviceID int64) ([]RecurringSchedule, error) {
	if _, err := s.directory.GetServiceByID(ctx, organizationID, serviceID); err != nil {
		return nil, err
	}
	return s.repo.ListByService(ctx, organizationID, serviceID)
}

func (s *service) Occurrences(ctx context.Context, organizationID, scheduleID int64, windowStart, windowEnd time.Time) ([]time.Time, error) {
	if !windowStart.Before(windowEnd) {
		return nil, apperr.E(apperr.KindValidation, "window start must be before window end")
	}
	return s.engine.Occurrences(ctx, organizationID, scheduleID, windowStart, windowEnd)
}

// Materialize inserts a confirmed booking for every occurrence between now
// and now+horizon. Keyed on (schedule, instance date), it can be re-run for
// overlapping horizons without duplicating bookings.
func (s *service) Materialize(ctx context.Context, organizationID, scheduleID int64, horizon time.Duration) (*MaterializeResponse, error) {
	if horizon <= 0 {
		return nil, apperr.E(apperr.KindValidation, "materialization horizon must be positive")
	}

	sched, err := s.repo.GetByID(ctx, organizationID, scheduleID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	occurrences, err := s.engine.Occurrences(ctx, organizationID, scheduleID, now, now.Add(horizon))
	if err != nil {
		return nil, err
	}

	resp := &MaterializeResponse{ScheduleID: scheduleID}
	for _, occ := range occurrences {
		instanceDate := timeutil.StartOfDay(occ)
		serviceID := sched.ServiceID
		b := &booking.Booking{
			Reference:           uuid.NewString(),
			OrganizationID:      organizationID,
			UserID:              sched.UserID,
			ServiceID:           &serviceID,
			StaffID:             sched.StaffID,
			ResourceID:          sched.ResourceID,
			LocationID:          sched.LocationID,
			StartTime:           occ,
			EndTime:             occ.Add(time.Duration(sched.DurationMinutes) * time.Minute),
			Status:              booking.StatusConfirmed,
			Type:                "recurring_instance",
			Notes:               sched.Description,
			RecurringScheduleID: &scheduleID,
			InstanceDate:        &instanceDate,
		}

		created, err := s.bookings.CreateInstance(ctx, b)
		if err != nil {
			return nil, err
		}
		if created {
			resp.Created++
		} else {
			resp.Skipped++
		}
	}
	metrics.RecordMaterializedOccurrences(resp.Created)

	logger.Info("materialized schedule occurrences",
		"schedule_id", scheduleID, "created", resp.Created, "skipped", resp.Skipped)
	return resp, nil
}

func (s *service) AddException(ctx context.Context, organizationID, scheduleID int64, req CreateExceptionRequest) (*RecurrenceException, error) {
	if _, err := s.repo.GetByID(ctx, organizationID, scheduleID); err != nil {
		return nil, err
	}

	if req.ExceptionType != ExceptionCancelled && req.ExceptionType != ExceptionRescheduled {
		return nil, apperr.Ef(apperr.KindValidation, "unknown exception type %q", req.ExceptionType)
	}
	if req.ExceptionType == ExceptionRescheduled && req.NewStartTime == nil {
		return nil, apperr.E(apperr.KindValidation, "rescheduled exception requires a new start time")
	}

	return s.repo.CreateException(ctx, &RecurrenceException{
		ScheduleID:       scheduleID,
		OriginalDateTime: req.OriginalDateTime,
		ExceptionType:    req.ExceptionType,
		NewStartTime:     req.NewStartTime,
	})
}

func (s *service) ListExceptions(ctx context.Context, organizationID, scheduleID int64) ([]RecurrenceException, error) {
	if _, err := s.repo.GetByID(ctx, organizationID, scheduleID); err != nil {
		return nil, err
	}
	return s.repo.ListExceptions(ctx, scheduleID)
}

func (s *service) RemoveException(ctx context.Context, organizationID, scheduleID, exceptionID int64) error {
	if _, err := s.repo.GetByID(ctx, organizationID, scheduleID); err != nil {
		return err
	}
	return s.repo.DeleteException(ctx, scheduleID, exceptionID)
}

func (s *service) fromRequest(ctx context.Context, organizationID int64, req CreateScheduleRequest) (*RecurringSchedule, error) {
	if _, err := s.directory.GetServiceByID(ctx, organizationID, req.ServiceID); err != nil {
		return nil, err
	}
	if _, err := s.directory.GetUserByID(ctx, organizationID, req.UserID); err != nil {
		return nil, err
	}
	if req.StaffID != nil {
		if _, err := s.directory.GetUserByID(ctx, organizationID, *req.StaffID); err != nil {
			return nil, err
		}
	}
	if req.ResourceID != nil {
		if _, err := s.directory.GetResourceByID(ctx, organizationID, *req.ResourceID); err != nil {
			return nil, err
		}
	}
	if req.LocationID != nil {
		if _, err := s.directory.GetLocationByID(ctx, organizationID, *req.LocationID); err != nil {
			return nil, err
		}
	}

	interval := req.Interval
	if interval == 0 {
		interval = 1
	}

	return &RecurringSchedule{
		OrganizationID:  organizationID,
		ServiceID:       req.ServiceID,
		UserID:          req.UserID,
		StaffID:         req.StaffID,
		ResourceID:      req.ResourceID,
		LocationID:      req.LocationID,
		Frequency:       req.Frequency,
		Interval:        interval,
		Count:           req.Count,
		Until:           req.Until,
		ByWeekday:       pq.StringArray(req.ByWeekday),
		ByMonthDay:      pq.Int64Array(req.ByMonthDay),
		ByMonth:         pq.Int64Array(req.ByMonth),
		BySetPos:        pq.Int64Array(req.BySetPos),
		ByYearDay:       pq.Int64Array(req.ByYearDay),
		ByWeekNo:        pq.Int64Array(req.ByWeekNo),
		WeekStart:       req.WeekStart,
		DtStart:         req.DtStart,
		DtEnd:           req.DtEnd,
		Timezone:        req.Timezone,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Description:     req.Description,
		Exdates:         req.Exdates,
	}, nil
}
