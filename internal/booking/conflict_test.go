package booking

import (
	"context"
	"testing"
	"time"

	"bookwise/internal/directory"
	"bookwise/internal/staff"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func availableAllDay(staffID int64) []staff.Availability {
	return []staff.Availability{
		{ID: 1, UserID: staffID, DayOfWeek: 1, StartTime: "00:00", EndTime: "23:59", IsAvailable: true},
	}
}

func TestDetectorStaffConflict(t *testing.T) {
	// Monday
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name          string
		existingStart time.Time
		existingEnd   time.Time
		wantConflict  bool
	}{
		{"exact overlap", start, end, true},
		{"partial overlap", start.Add(30 * time.Minute), end.Add(30 * time.Minute), true},
		{"existing contains candidate", start.Add(-time.Hour), end.Add(time.Hour), true},
		{"touching before", start.Add(-time.Hour), start, false},
		{"touching after", end, end.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockBookingRepo)
			staffRepo := new(MockStaffRepo)
			dir := new(MockDirectoryRepo)
			detector := NewDetector(repo, staffRepo, dir)

			var overlapping []Booking
			if tt.wantConflict {
				overlapping = []Booking{{
					ID: 55, OrganizationID: 1, StaffID: int64Ptr(9),
					StartTime: tt.existingStart, EndTime: tt.existingEnd,
					Status: StatusConfirmed,
				}}
			} else {
				overlapping = []Booking{}
			}

			repo.On("FindOverlapping", mock.Anything, mock.MatchedBy(func(f OverlapFilter) bool {
				return f.StaffID != nil && *f.StaffID == 9
			})).Return(overlapping, nil)
			staffRepo.On("WindowsOn", mock.Anything, int64(9), mock.Anything).Return(availableAllDay(9), nil)

			result, err := detector.Check(context.Background(), CheckParams{
				OrganizationID: 1,
				StartTime:      start,
				EndTime:        end,
				StaffID:        int64Ptr(9),
			})
			require.NoError(t, err)

			if tt.wantConflict {
				require.True(t, result.HasConflict)
				require.Len(t, result.Conflicts, 1)
				assert.Equal(t, ConflictStaff, result.Conflicts[0].Type)
				require.NotNil(t, result.Conflicts[0].BookingID)
				assert.Equal(t, int64(55), *result.Conflicts[0].BookingID)
			} else {
				assert.False(t, result.HasConflict)
			}
		})
	}
}

// A row whose interval only touches the candidate's endpoint must be
// filtered out even if the storage query returns it.
func TestDetectorFiltersTouchingRows(t *testing.T) {
	// Monday
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	repo := new(MockBookingRepo)
	staffRepo := new(MockStaffRepo)
	dir := new(MockDirectoryRepo)
	detector := NewDetector(repo, staffRepo, dir)

	repo.On("FindOverlapping", mock.Anything, mock.Anything).Return([]Booking{{
		ID: 55, OrganizationID: 1, StaffID: int64Ptr(9),
		StartTime: end, EndTime: end.Add(time.Hour),
		Status: StatusConfirmed,
	}}, nil)
	staffRepo.On("WindowsOn", mock.Anything, int64(9), mock.Anything).Return(availableAllDay(9), nil)

	result, err := detector.Check(context.Background(), CheckParams{
		OrganizationID: 1,
		StartTime:      start,
		EndTime:        end,
		StaffID:        int64Ptr(9),
	})
	require.NoError(t, err)
	assert.False(t, result.HasConflict)
	assert.Empty(t, result.Conflicts)
}

func TestDetectorMultipleSimultaneousConflicts(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	repo := new(MockBookingRepo)
	staffRepo := new(MockStaffRepo)
	dir := new(MockDirectoryRepo)
	detector := NewDetector(repo, staffRepo, dir)

	staffBooking := Booking{ID: 1, StaffID: int64Ptr(9), StartTime: start, EndTime: end, Status: StatusConfirmed}
	memberBooking := Booking{ID: 2, UserID: 4, StartTime: start, EndTime: end, Status: StatusConfirmed}

	repo.On("FindOverlapping", mock.Anything, mock.MatchedBy(func(f OverlapFilter) bool {
		return f.StaffID != nil
	})).Return([]Booking{staffBooking}, nil)
	repo.On("FindOverlapping", mock.Anything, mock.MatchedBy(func(f OverlapFilter) bool {
		return f.UserID != nil
	})).Return([]Booking{memberBooking}, nil)
	staffRepo.On("WindowsOn", mock.Anything, int64(9), mock.Anything).Return([]staff.Availability{}, nil)

	result, err := detector.Check(context.Background(), CheckParams{
		OrganizationID: 1,
		StartTime:      start,
		EndTime:        end,
		StaffID:        int64Ptr(9),
		UserID:         int64Ptr(4),
	})
	require.NoError(t, err)
	require.True(t, result.HasConflict)

	// fixed ordering: staff, member, then availability (no window at all)
	require.Len(t, result.Conflicts, 3)
	assert.Equal(t, ConflictStaff, result.Conflicts[0].Type)
	assert.Equal(t, ConflictMember, result.Conflicts[1].Type)
	assert.Equal(t, ConflictAvailability, result.Conflicts[2].Type)
}

func TestDetectorAvailability(t *testing.T) {
	// Monday 10:00-11:00 candidate
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		windows      []staff.Availability
		wantConflict bool
	}{
		{
			name: "window fully contains candidate",
			windows: []staff.Availability{
				{ID: 1, UserID: 9, DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
			},
			wantConflict: false,
		},
		{
			name: "window too short",
			windows: []staff.Availability{
				{ID: 1, UserID: 9, DayOfWeek: 1, StartTime: "09:00", EndTime: "10:30", IsAvailable: true},
			},
			wantConflict: true,
		},
		{
			name:         "no windows at all",
			windows:      []staff.Availability{},
			wantConflict: true,
		},
		{
			name: "unavailable window ignored",
			windows: []staff.Availability{
				{ID: 1, UserID: 9, DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: false},
			},
			wantConflict: true,
		},
		{
			name: "inverted window covers nothing",
			windows: []staff.Availability{
				{ID: 1, UserID: 9, DayOfWeek: 1, StartTime: "17:00", EndTime: "09:00", IsAvailable: true},
			},
			wantConflict: true,
		},
		{
			name: "date-specific override narrows the weekly window",
			windows: []staff.Availability{
				{ID: 1, UserID: 9, DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
				{ID: 2, UserID: 9, DayOfWeek: 1, StartTime: "13:00", EndTime: "17:00", IsAvailable: true, SpecificDate: &monday},
			},
			wantConflict: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockBookingRepo)
			staffRepo := new(MockStaffRepo)
			dir := new(MockDirectoryRepo)
			detector := NewDetector(repo, staffRepo, dir)

			repo.On("FindOverlapping", mock.Anything, mock.Anything).Return([]Booking{}, nil)
			staffRepo.On("WindowsOn", mock.Anything, int64(9), mock.Anything).Return(tt.windows, nil)

			result, err := detector.Check(context.Background(), CheckParams{
				OrganizationID: 1,
				StartTime:      start,
				EndTime:        end,
				StaffID:        int64Ptr(9),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantConflict, result.HasConflict)
			if tt.wantConflict {
				assert.Equal(t, ConflictAvailability, result.Conflicts[0].Type)
			}
		})
	}
}

func TestDetectorCapacity(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name         string
		capacity     *int
		booked       int
		wantConflict bool
	}{
		{"under capacity", intPtr(10), 5, false},
		{"at capacity", intPtr(10), 10, true},
		{"capacity one already taken", intPtr(1), 1, true},
		{"unlimited service", nil, 99, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockBookingRepo)
			staffRepo := new(MockStaffRepo)
			dir := new(MockDirectoryRepo)
			detector := NewDetector(repo, staffRepo, dir)

			dir.On("GetServiceByID", mock.Anything, int64(1), int64(3)).Return(&directory.Service{
				ID: 3, OrganizationID: 1, Name: "Spin Class", DurationMinutes: 60, Capacity: tt.capacity,
			}, nil)
			if tt.capacity != nil {
				repo.On("CountOverlappingForService", mock.Anything, int64(1), int64(3), start, end, (*int64)(nil)).
					Return(tt.booked, nil)
			}

			result, err := detector.Check(context.Background(), CheckParams{
				OrganizationID: 1,
				StartTime:      start,
				EndTime:        end,
				ServiceID:      int64Ptr(3),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantConflict, result.HasConflict)
			if tt.wantConflict {
				assert.Equal(t, ConflictCapacity, result.Conflicts[0].Type)
			}
		})
	}
}
