package schedule

import (
	"time"

	"github.com/lib/pq"
)

const (
	FreqDaily   = "DAILY"
	FreqWeekly  = "WEEKLY"
	FreqMonthly = "MONTHLY"
	FreqYearly  = "YEARLY"
)

const (
	ExceptionCancelled   = "CANCELLED"
	ExceptionRescheduled = "RESCHEDULED"
)

// RecurringSchedule is a template that expands into concrete bookings.
// The by-* lists refine the base frequency the same way RFC 5545 recurrence
// rules do; empty lists mean no refinement on that axis.
type RecurringSchedule struct {
	ID              int64          `db:"id" json:"id"`
	OrganizationID  int64          `db:"organization_id" json:"organization_id"`
	ServiceID       int64          `db:"service_id" json:"service_id"`
	UserID          int64          `db:"user_id" json:"user_id"`
	StaffID         *int64         `db:"staff_id" json:"staff_id,omitempty"`
	ResourceID      *int64         `db:"resource_id" json:"resource_id,omitempty"`
	LocationID      *int64         `db:"location_id" json:"location_id,omitempty"`
	Frequency       string         `db:"frequency" json:"frequency"`
	Interval        int            `db:"interval" json:"interval"`
	Count           *int           `db:"count" json:"count,omitempty"`
	Until           *time.Time     `db:"until" json:"until,omitempty"`
	ByWeekday       pq.StringArray `db:"by_weekday" json:"by_weekday,omitempty"`
	ByMonthDay      pq.Int64Array  `db:"by_month_day" json:"by_month_day,omitempty"`
	ByMonth         pq.Int64Array  `db:"by_month" json:"by_month,omitempty"`
	BySetPos        pq.Int64Array  `db:"by_set_pos" json:"by_set_pos,omitempty"`
	ByYearDay       pq.Int64Array  `db:"by_year_day" json:"by_year_day,omitempty"`
	ByWeekNo        pq.Int64Array  `db:"by_week_no" json:"by_week_no,omitempty"`
	WeekStart       string         `db:"week_start" json:"week_start"`
	DtStart         time.Time      `db:"dtstart" json:"dtstart"`
	DtEnd           *time.Time     `db:"dtend" json:"dtend,omitempty"`
	Timezone        string         `db:"timezone" json:"timezone"`
	StartTime       string         `db:"start_time" json:"start_time"`
	DurationMinutes int            `db:"duration_minutes" json:"duration_minutes"`
	Description     string         `db:"description" json:"description"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`

	// Exdates live in a child table and are loaded alongside the schedule.
	Exdates []time.Time `db:"-" json:"exdates,omitempty"`
}

// RecurrenceException overrides a single occurrence. CANCELLED drops the
// slot; RESCHEDULED drops it too and records where the instance moved.
type RecurrenceException struct {
	ID               int64      `db:"id" json:"id"`
	ScheduleID       int64      `db:"schedule_id" json:"schedule_id"`
	OriginalDateTime time.Time  `db:"original_date_time" json:"original_date_time"`
	ExceptionType    string     `db:"exception_type" json:"exception_type"`
	NewStartTime     *time.Time `db:"new_start_time" json:"new_start_time,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

type CreateScheduleRequest struct {
	ServiceID       int64       `json:"service_id" binding:"required"`
	UserID          int64       `json:"user_id" binding:"required"`
	StaffID         *int64      `json:"staff_id"`
	ResourceID      *int64      `json:"resource_id"`
	LocationID      *int64      `json:"location_id"`
	Frequency       string      `json:"frequency" binding:"required"`
	Interval        int         `json:"interval"`
	Count           *int        `json:"count"`
	Until           *time.Time  `json:"until"`
	ByWeekday       []string    `json:"by_weekday"`
	ByMonthDay      []int64     `json:"by_month_day"`
	ByMonth         []int64     `json:"by_month"`
	BySetPos        []int64     `json:"by_set_pos"`
	ByYearDay       []int64     `json:"by_year_day"`
	ByWeekNo        []int64     `json:"by_week_no"`
	WeekStart       string      `json:"week_start"`
	DtStart         time.Time   `json:"dtstart" binding:"required"`
	DtEnd           *time.Time  `json:"dtend"`
	Timezone        string      `json:"timezone" binding:"omitempty,tzname"`
	StartTime       string      `json:"start_time" binding:"required,clock"`
	DurationMinutes int         `json:"duration_minutes" binding:"required"`
	Description     string      `json:"description"`
	Exdates         []time.Time `json:"exdates"`
}

type CreateExceptionRequest struct {
	OriginalDateTime time.Time  `json:"original_date_time" binding:"required"`
	ExceptionType    string     `json:"exception_type" binding:"required"`
	NewStartTime     *time.Time `json:"new_start_time"`
}

type MaterializeResponse struct {
	ScheduleID int64 `json:"schedule_id"`
	Created    int   `json:"created"`
	Skipped    int   `json:"skipped"`
}
