package booking

import (
	"context"
	"time"
)

// OverlapFilter scopes an overlap query. Optional dimensions are pointer
// fields; nil means "do not filter on this".
type OverlapFilter struct {
	OrganizationID   int64
	StaffID          *int64
	ResourceID       *int64
	UserID           *int64
	ServiceID        *int64
	Start            time.Time
	End              time.Time
	ExcludeBookingID *int64
}

type Repository interface {
	Create(ctx context.Context, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, organizationID, id int64) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	// UpdateStatus flips status from -> to; the from guard makes concurrent
	// transitions lose cleanly instead of double-applying.
	UpdateStatus(ctx context.Context, organizationID, id int64, from, to Status) error
	FindOverlapping(ctx context.Context, f OverlapFilter) ([]Booking, error)
	CountOverlappingForService(ctx context.Context, organizationID, serviceID int64, start, end time.Time, excludeBookingID *int64) (int, error)
	ListByUser(ctx context.Context, organizationID, userID int64) ([]Booking, error)
	// CreateInstance inserts a materialized occurrence of a recurring
	// schedule; returns false when the (schedule, instance date) pair
	// already exists.
	CreateInstance(ctx context.Context, b *Booking) (bool, error)
	DeleteFutureBySchedule(ctx context.Context, scheduleID int64, from time.Time) (int64, error)
}
