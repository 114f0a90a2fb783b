package booking

import (
	"context"
	"time"

	"bookwise/internal/apperr"
	"bookwise/internal/timeutil"
)

const (
	scanStartHour = 6
	scanEndHour   = 22
	scanStep      = 30 * time.Minute
)

// Slot is a free interval a booking of the requested duration would fit in.
type Slot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// SlotQuery scopes an availability scan. The member dimension is absent on
// purpose: slot search is not member-specific.
type SlotQuery struct {
	OrganizationID  int64
	Date            time.Time
	DurationMinutes int
	ServiceID       *int64
	ResourceID      *int64
	StaffID         *int64
}

// SlotFinder scans a day in fixed 30-minute steps and keeps every step the
// conflict detector clears. Brute force, but the window is 16 hours at
// coarse granularity; results are deterministic for fixed inputs.
type SlotFinder struct {
	detector *Detector
}

func NewSlotFinder(detector *Detector) *SlotFinder {
	return &SlotFinder{detector: detector}
}

func (f *SlotFinder) AvailableSlots(ctx context.Context, q SlotQuery) ([]Slot, error) {
	if q.DurationMinutes <= 0 {
		return nil, apperr.E(apperr.KindValidation, "duration must be positive")
	}

	duration := time.Duration(q.DurationMinutes) * time.Minute
	day := timeutil.StartOfDay(q.Date)
	scanStart := day.Add(scanStartHour * time.Hour)
	scanEnd := day.Add(scanEndHour * time.Hour)

	slots := []Slot{}
	for start := scanStart; start.Before(scanEnd); start = start.Add(scanStep) {
		end := start.Add(duration)

		result, err := f.detector.Check(ctx, CheckParams{
			OrganizationID: q.OrganizationID,
			StartTime:      start,
			EndTime:        end,
			ServiceID:      q.ServiceID,
			ResourceID:     q.ResourceID,
			StaffID:        q.StaffID,
		})
		if err != nil {
			return nil, err
		}

		if !result.HasConflict {
			slots = append(slots, Slot{StartTime: start, EndTime: end})
		}
	}

	return slots, nil
}
