package calendar

import "time"

// Event is the uniform read model the calendar views share. It is a
// projection of a booking joined with its directory records, never a
// source of truth.
type Event struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Start        time.Time `db:"start_time" json:"start"`
	End          time.Time `db:"end_time" json:"end"`
	Status       string    `db:"status" json:"status"`
	MemberName   string    `db:"member_name" json:"member_name"`
	StaffName    string    `db:"staff_name" json:"staff_name,omitempty"`
	ServiceName  string    `db:"service_name" json:"service_name,omitempty"`
	ResourceName string    `db:"resource_name" json:"resource_name,omitempty"`
	IsRecurring  bool      `db:"is_recurring" json:"is_recurring"`
}

// Filter scopes the projection query. Optional dimensions are pointer
// fields; nil means "do not filter on this".
type Filter struct {
	OrganizationID int64
	From           time.Time
	To             time.Time
	StaffID        *int64
	UserID         *int64
	ServiceID      *int64
	ResourceID     *int64
}
