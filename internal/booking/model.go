package booking

import "time"

// Status is the lifecycle state of a booking. Cancellation is a status
// change, never a row deletion; only future instances of a deleted recurring
// schedule are physically removed.
type Status string

const (
	StatusPending           Status = "pending"
	StatusConfirmed         Status = "confirmed"
	StatusAttended          Status = "attended"
	StatusNoShow            Status = "no_show"
	StatusCancelledByMember Status = "cancelled_by_member"
	StatusCancelledByStaff  Status = "cancelled_by_staff"
)

// blockingStatuses are the statuses that still occupy a slot for conflict
// purposes. An attended booking keeps blocking; cancellations and no-shows
// free the slot.
var blockingStatuses = []Status{StatusPending, StatusConfirmed, StatusAttended}

// BlockingStatusStrings returns blocking statuses as plain strings for SQL
// IN clauses.
func BlockingStatusStrings() []string {
	out := make([]string, len(blockingStatuses))
	for i, s := range blockingStatuses {
		out[i] = string(s)
	}
	return out
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusAttended, StatusNoShow, StatusCancelledByMember, StatusCancelledByStaff:
		return true
	}
	return false
}

// allowedTransitions is the exhaustive state machine:
// pending -> confirmed -> {attended, no_show, cancelled_*}.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelledByMember, StatusCancelledByStaff},
	StatusConfirmed: {StatusAttended, StatusNoShow, StatusCancelledByMember, StatusCancelledByStaff},
}

// CanTransition reports whether from -> to is a legal status transition.
func CanTransition(from, to Status) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusAttended, StatusNoShow,
		StatusCancelledByMember, StatusCancelledByStaff:
		return true
	}
	return false
}

type Booking struct {
	ID             int64  `db:"id" json:"id"`
	Reference      string `db:"reference" json:"reference"`
	OrganizationID int64  `db:"organization_id" json:"organization_id"`
	UserID         int64  `db:"user_id" json:"user_id"`
	ServiceID      *int64 `db:"service_id" json:"service_id,omitempty"`
	StaffID        *int64 `db:"staff_id" json:"staff_id,omitempty"`
	ResourceID     *int64 `db:"resource_id" json:"resource_id,omitempty"`
	LocationID     *int64 `db:"location_id" json:"location_id,omitempty"`

	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	AllDay    bool      `db:"all_day" json:"all_day"`

	Status Status `db:"status" json:"status"`
	Type   string `db:"type" json:"type"`

	Notes        string `db:"notes" json:"notes,omitempty"`
	PrivateNotes string `db:"private_notes" json:"-"`

	PriceCents  *int64 `db:"price_cents" json:"price_cents,omitempty"`
	CreditsUsed *int   `db:"credits_used" json:"credits_used,omitempty"`

	RecurringScheduleID *int64     `db:"recurring_schedule_id" json:"recurring_schedule_id,omitempty"`
	InstanceDate        *time.Time `db:"instance_date" json:"instance_date,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (b *Booking) IsRecurring() bool {
	return b.RecurringScheduleID != nil
}

// CreateBookingRequest is the payload for creating a booking.
type CreateBookingRequest struct {
	UserID     int64  `json:"user_id" binding:"required"`
	ServiceID  *int64 `json:"service_id"`
	StaffID    *int64 `json:"staff_id"`
	ResourceID *int64 `json:"resource_id"`
	LocationID *int64 `json:"location_id"`

	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	AllDay    bool      `json:"all_day"`

	Status Status `json:"status"`
	Type   string `json:"type"`

	Notes        string `json:"notes"`
	PrivateNotes string `json:"private_notes"`

	PriceCents  *int64 `json:"price_cents"`
	CreditsUsed *int   `json:"credits_used"`
}

// UpdateBookingRequest carries partial edits; only non-nil fields are
// applied.
type UpdateBookingRequest struct {
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	StaffID      *int64     `json:"staff_id"`
	ResourceID   *int64     `json:"resource_id"`
	Notes        *string    `json:"notes"`
	PrivateNotes *string    `json:"private_notes"`
}

// CreateBookingResponse wraps a created booking. ClassFull is informational:
// the booking that just landed took the last spot of a capacity-limited
// class.
type CreateBookingResponse struct {
	Booking   *Booking `json:"booking"`
	ClassFull bool     `json:"class_full"`
}
