package staff

import "time"

// Availability is a window in which a staff member may be booked: either a
// weekly rule (DayOfWeek, SpecificDate nil) or a date override. Windows are
// stored as "HH:MM" times of day. Read-only input to conflict detection.
type Availability struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	DayOfWeek    int        `db:"day_of_week" json:"day_of_week"` // 0=Sunday .. 6=Saturday
	StartTime    string     `db:"start_time" json:"start_time"`
	EndTime      string     `db:"end_time" json:"end_time"`
	SpecificDate *time.Time `db:"specific_date" json:"specific_date,omitempty"`
	IsAvailable  bool       `db:"is_available" json:"is_available"`
	Notes        string     `db:"notes" json:"notes"`
}
