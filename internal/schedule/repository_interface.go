package schedule

import "context"

type Repository interface {
	Create(ctx context.Context, s *RecurringSchedule) (*RecurringSchedule, error)
	// GetByID loads the schedule together with its exdates.
	GetByID(ctx context.Context, organizationID, id int64) (*RecurringSchedule, error)
	Update(ctx context.Context, s *RecurringSchedule) error
	Delete(ctx context.Context, organizationID, id int64) error
	ListByService(ctx context.Context, organizationID, serviceID int64) ([]RecurringSchedule, error)
	CreateException(ctx context.Context, ex *RecurrenceException) (*RecurrenceException, error)
	ListExceptions(ctx context.Context, scheduleID int64) ([]RecurrenceException, error)
	DeleteException(ctx context.Context, scheduleID, exceptionID int64) error
}
