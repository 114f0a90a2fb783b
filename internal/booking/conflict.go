package booking

import (
	"context"
	"fmt"
	"time"

	"bookwise/internal/directory"
	"bookwise/internal/metrics"
	"bookwise/internal/staff"
	"bookwise/internal/timeutil"
)

type ConflictType string

const (
	ConflictStaff        ConflictType = "staff"
	ConflictResource     ConflictType = "resource"
	ConflictMember       ConflictType = "member"
	ConflictAvailability ConflictType = "availability"
	ConflictCapacity     ConflictType = "capacity"
)

// ConflictDetail describes one rule violation blocking a candidate booking.
type ConflictDetail struct {
	Type      ConflictType `json:"type"`
	Message   string       `json:"message"`
	BookingID *int64       `json:"booking_id,omitempty"`
	StartTime *time.Time   `json:"start_time,omitempty"`
	EndTime   *time.Time   `json:"end_time,omitempty"`
}

type ConflictCheckResult struct {
	HasConflict bool             `json:"has_conflict"`
	Conflicts   []ConflictDetail `json:"conflicts"`
}

// CheckParams describes a candidate booking to validate. UserID is nil for
// availability scans that are not member-specific.
type CheckParams struct {
	OrganizationID   int64
	StartTime        time.Time
	EndTime          time.Time
	ServiceID        *int64
	ResourceID       *int64
	StaffID          *int64
	UserID           *int64
	ExcludeBookingID *int64
}

// Detector runs the five conflict checks against current data. It is
// read-only; callers must re-run it inside the committing transaction (or
// rely on the database exclusion constraints) because check-then-act is
// racy.
type Detector struct {
	bookings  Repository
	staff     staff.Repository
	directory directory.Repository
}

func NewDetector(bookings Repository, staffRepo staff.Repository, dir directory.Repository) *Detector {
	return &Detector{bookings: bookings, staff: staffRepo, directory: dir}
}

// Check runs every category independently and concatenates results in a
// fixed order: staff, resource, member, availability, capacity.
func (d *Detector) Check(ctx context.Context, p CheckParams) (*ConflictCheckResult, error) {
	result := &ConflictCheckResult{Conflicts: []ConflictDetail{}}

	if p.StaffID != nil {
		details, err := d.overlapConflicts(ctx, p, OverlapFilter{StaffID: p.StaffID},
			ConflictStaff, "Staff member already has a booking during this time")
		if err != nil {
			return nil, err
		}
		result.Conflicts = append(result.Conflicts, details...)
	}

	if p.ResourceID != nil {
		details, err := d.overlapConflicts(ctx, p, OverlapFilter{ResourceID: p.ResourceID},
			ConflictResource, "Resource is already booked during this time")
		if err != nil {
			return nil, err
		}
		result.Conflicts = append(result.Conflicts, details...)
	}

	if p.UserID != nil {
		details, err := d.overlapConflicts(ctx, p, OverlapFilter{UserID: p.UserID},
			ConflictMember, "Member already has a booking during this time")
		if err != nil {
			return nil, err
		}
		result.Conflicts = append(result.Conflicts, details...)
	}

	if p.StaffID != nil {
		detail, err := d.availabilityConflict(ctx, p)
		if err != nil {
			return nil, err
		}
		if detail != nil {
			result.Conflicts = append(result.Conflicts, *detail)
		}
	}

	if p.ServiceID != nil {
		detail, err := d.capacityConflict(ctx, p)
		if err != nil {
			return nil, err
		}
		if detail != nil {
			result.Conflicts = append(result.Conflicts, *detail)
		}
	}

	result.HasConflict = len(result.Conflicts) > 0
	for _, c := range result.Conflicts {
		metrics.RecordConflict(string(c.Type))
	}

	return result, nil
}

func (d *Detector) overlapConflicts(ctx context.Context, p CheckParams, scope OverlapFilter, ctype ConflictType, message string) ([]ConflictDetail, error) {
	scope.OrganizationID = p.OrganizationID
	scope.Start = p.StartTime
	scope.End = p.EndTime
	scope.ExcludeBookingID = p.ExcludeBookingID

	overlapping, err := d.bookings.FindOverlapping(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("checking %s conflicts: %w", ctype, err)
	}

	details := make([]ConflictDetail, 0, len(overlapping))
	for i := range overlapping {
		b := overlapping[i]
		// Touching endpoints do not conflict.
		if !timeutil.Overlaps(p.StartTime, p.EndTime, b.StartTime, b.EndTime) {
			continue
		}
		start, end := b.StartTime, b.EndTime
		details = append(details, ConflictDetail{
			Type:      ctype,
			Message:   message,
			BookingID: &b.ID,
			StartTime: &start,
			EndTime:   &end,
		})
	}

	return details, nil
}

// availabilityConflict requires a staff availability window fully containing
// the candidate interval. No matching window at all is itself a conflict.
// Date-specific windows override the weekly rule for that day.
func (d *Detector) availabilityConflict(ctx context.Context, p CheckParams) (*ConflictDetail, error) {
	windows, err := d.staff.WindowsOn(ctx, *p.StaffID, p.StartTime)
	if err != nil {
		return nil, fmt.Errorf("checking staff availability: %w", err)
	}

	specific := windows[:0:0]
	weekly := windows[:0:0]
	for _, w := range windows {
		if w.SpecificDate != nil {
			specific = append(specific, w)
		} else {
			weekly = append(weekly, w)
		}
	}
	if len(specific) > 0 {
		weekly = specific
	}

	for _, w := range weekly {
		if !w.IsAvailable {
			continue
		}
		covered, err := windowCovers(w, p.StartTime, p.EndTime)
		if err != nil {
			return nil, err
		}
		if covered {
			return nil, nil
		}
	}

	return &ConflictDetail{
		Type:    ConflictAvailability,
		Message: "Staff member is not available at the requested time",
	}, nil
}

func windowCovers(w staff.Availability, start, end time.Time) (bool, error) {
	windowStart, err := timeutil.ParseClock(w.StartTime)
	if err != nil {
		return false, fmt.Errorf("availability window %d: %w", w.ID, err)
	}
	windowEnd, err := timeutil.ParseClock(w.EndTime)
	if err != nil {
		return false, fmt.Errorf("availability window %d: %w", w.ID, err)
	}

	// An empty or inverted window covers nothing.
	if windowEnd.Minutes() <= windowStart.Minutes() {
		return false, nil
	}

	ws := timeutil.AtClock(start, windowStart)
	we := timeutil.AtClock(start, windowEnd)
	return !start.Before(ws) && !end.After(we), nil
}

func (d *Detector) capacityConflict(ctx context.Context, p CheckParams) (*ConflictDetail, error) {
	svc, err := d.directory.GetServiceByID(ctx, p.OrganizationID, *p.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("looking up service for capacity check: %w", err)
	}
	if svc.Capacity == nil {
		return nil, nil
	}

	count, err := d.bookings.CountOverlappingForService(ctx, p.OrganizationID, *p.ServiceID, p.StartTime, p.EndTime, p.ExcludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("counting bookings for capacity check: %w", err)
	}

	if count >= *svc.Capacity {
		return &ConflictDetail{
			Type:    ConflictCapacity,
			Message: fmt.Sprintf("%s is full (capacity %d)", svc.Name, *svc.Capacity),
		}, nil
	}

	return nil, nil
}
