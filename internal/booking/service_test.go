package booking

import (
	"context"
	"testing"
	"time"

	"bookwise/internal/apperr"
	"bookwise/internal/directory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(repo *MockBookingRepo, staffRepo *MockStaffRepo, dir *MockDirectoryRepo, promoter *MockPromoter) Service {
	detector := NewDetector(repo, staffRepo, dir)
	svc := NewService(repo, dir, detector, promoter, nil).(*service)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func memberFixture(id int64) *directory.User {
	return &directory.User{ID: id, OrganizationID: 1, FirstName: "Test", LastName: "Member", Role: "member"}
}

func TestCreateValidation(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  CreateBookingRequest
		msg  string
	}{
		{
			name: "start after end",
			req:  CreateBookingRequest{UserID: 4, StartTime: start, EndTime: start.Add(-time.Hour)},
			msg:  "start time must be before end time",
		},
		{
			name: "start equals end",
			req:  CreateBookingRequest{UserID: 4, StartTime: start, EndTime: start},
			msg:  "start time must be before end time",
		},
		{
			name: "start in the past",
			req: CreateBookingRequest{
				UserID:    4,
				StartTime: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
				EndTime:   time.Date(2025, 2, 1, 11, 0, 0, 0, time.UTC),
			},
			msg: "cannot create a booking in the past",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(new(MockBookingRepo), new(MockStaffRepo), new(MockDirectoryRepo), new(MockPromoter))
			_, err := svc.Create(context.Background(), 1, tt.req)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCreateCrossOrganizationUser(t *testing.T) {
	repo := new(MockBookingRepo)
	dir := new(MockDirectoryRepo)
	svc := newTestService(repo, new(MockStaffRepo), dir, new(MockPromoter))

	dir.On("GetUserByID", mock.Anything, int64(1), int64(4)).
		Return(nil, apperr.E(apperr.KindNotFound, "user not found"))

	_, err := svc.Create(context.Background(), 1, CreateBookingRequest{
		UserID:    4,
		StartTime: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
	})
	assert.True(t, apperr.IsNotFound(err))
	repo.AssertNotCalled(t, "Create")
}

func TestCreateCapacityOneSecondBookingRejected(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	repo := new(MockBookingRepo)
	dir := new(MockDirectoryRepo)
	svc := newTestService(repo, new(MockStaffRepo), dir, new(MockPromoter))

	dir.On("GetUserByID", mock.Anything, int64(1), int64(4)).Return(memberFixture(4), nil)
	dir.On("GetServiceByID", mock.Anything, int64(1), int64(3)).Return(&directory.Service{
		ID: 3, OrganizationID: 1, Name: "Personal Training", Capacity: intPtr(1), DurationMinutes: 60,
	}, nil)
	repo.On("FindOverlapping", mock.Anything, mock.Anything).Return([]Booking{}, nil)
	// one confirmed booking already occupies the only spot
	repo.On("CountOverlappingForService", mock.Anything, int64(1), int64(3), start, end, (*int64)(nil)).Return(1, nil)

	_, err := svc.Create(context.Background(), 1, CreateBookingRequest{
		UserID:    4,
		ServiceID: int64Ptr(3),
		StartTime: start,
		EndTime:   end,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	details, ok := apperr.DetailsOf(err).([]ConflictDetail)
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, ConflictCapacity, details[0].Type)
	repo.AssertNotCalled(t, "Create")
}

func TestCreateSuccessClassFull(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	repo := new(MockBookingRepo)
	dir := new(MockDirectoryRepo)
	svc := newTestService(repo, new(MockStaffRepo), dir, new(MockPromoter))

	dir.On("GetUserByID", mock.Anything, int64(1), int64(4)).Return(memberFixture(4), nil)
	dir.On("GetServiceByID", mock.Anything, int64(1), int64(3)).Return(&directory.Service{
		ID: 3, OrganizationID: 1, Name: "Yoga", Capacity: intPtr(2), DurationMinutes: 60,
	}, nil)
	repo.On("FindOverlapping", mock.Anything, mock.Anything).Return([]Booking{}, nil)
	// pre-commit check sees one existing booking; post-commit count sees two
	repo.On("CountOverlappingForService", mock.Anything, int64(1), int64(3), start, end, (*int64)(nil)).
		Return(1, nil).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(b *Booking) bool {
		return b.Status == StatusConfirmed && b.Reference != ""
	})).Return(&Booking{ID: 77, OrganizationID: 1, UserID: 4, ServiceID: int64Ptr(3), StartTime: start, EndTime: end, Status: StatusConfirmed}, nil)
	repo.On("CountOverlappingForService", mock.Anything, int64(1), int64(3), start, end, (*int64)(nil)).
		Return(2, nil).Once()

	resp, err := svc.Create(context.Background(), 1, CreateBookingRequest{
		UserID:    4,
		ServiceID: int64Ptr(3),
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), resp.Booking.ID)
	assert.True(t, resp.ClassFull)
}

func TestUpdateReRunsConflictCheckWithExclusion(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	newStart := start.Add(2 * time.Hour)
	newEnd := end.Add(2 * time.Hour)

	repo := new(MockBookingRepo)
	staffRepo := new(MockStaffRepo)
	dir := new(MockDirectoryRepo)
	svc := newTestService(repo, staffRepo, dir, new(MockPromoter))

	existing := &Booking{
		ID: 5, OrganizationID: 1, UserID: 4, StaffID: int64Ptr(9),
		StartTime: start, EndTime: end, Status: StatusConfirmed,
	}
	repo.On("GetByID", mock.Anything, int64(1), int64(5)).Return(existing, nil)
	repo.On("FindOverlapping", mock.Anything, mock.MatchedBy(func(f OverlapFilter) bool {
		return f.ExcludeBookingID != nil && *f.ExcludeBookingID == 5 && f.Start.Equal(newStart)
	})).Return([]Booking{}, nil)
	staffRepo.On("WindowsOn", mock.Anything, int64(9), mock.Anything).Return(availableAllDay(9), nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(b *Booking) bool {
		return b.StartTime.Equal(newStart) && b.EndTime.Equal(newEnd)
	})).Return(nil)

	updated, err := svc.Update(context.Background(), 1, 5, UpdateBookingRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, newStart, updated.StartTime)
	repo.AssertExpectations(t)
}

func TestUpdateTerminalBookingRejected(t *testing.T) {
	repo := new(MockBookingRepo)
	svc := newTestService(repo, new(MockStaffRepo), new(MockDirectoryRepo), new(MockPromoter))

	repo.On("GetByID", mock.Anything, int64(1), int64(5)).Return(&Booking{
		ID: 5, OrganizationID: 1, Status: StatusCancelledByMember,
	}, nil)

	notes := "new notes"
	_, err := svc.Update(context.Background(), 1, 5, UpdateBookingRequest{Notes: &notes})
	assert.True(t, apperr.IsValidation(err))
}

func TestCancelTriggersAutoPromotion(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	repo := new(MockBookingRepo)
	dir := new(MockDirectoryRepo)
	promoter := new(MockPromoter)
	svc := newTestService(repo, new(MockStaffRepo), dir, promoter)

	repo.On("GetByID", mock.Anything, int64(1), int64(5)).Return(&Booking{
		ID: 5, OrganizationID: 1, UserID: 4, ServiceID: int64Ptr(3),
		StartTime: start, EndTime: end, Status: StatusConfirmed,
	}, nil)
	repo.On("UpdateStatus", mock.Anything, int64(1), int64(5), StatusConfirmed, StatusCancelledByMember).Return(nil)
	dir.On("GetServiceByID", mock.Anything, int64(1), int64(3)).Return(&directory.Service{
		ID: 3, OrganizationID: 1, Name: "Yoga", Capacity: intPtr(10), DurationMinutes: 60,
	}, nil)
	promoter.On("AutoPromoteAfterCancellation", mock.Anything, int64(1), int64(3), start, end).Return(nil)

	err := svc.Cancel(context.Background(), 1, 5, false)
	require.NoError(t, err)
	promoter.AssertExpectations(t)
}

func TestCancelQueuesMemberNotice(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	repo := new(MockBookingRepo)
	dir := new(MockDirectoryRepo)
	notifier := new(MockCancellationNotifier)
	detector := NewDetector(repo, new(MockStaffRepo), dir)
	svc := NewService(repo, dir, detector, new(MockPromoter), notifier)

	member := memberFixture(4)
	repo.On("GetByID", mock.Anything, int64(1), int64(5)).Return(&Booking{
		ID: 5, OrganizationID: 1, UserID: 4, ServiceID: int64Ptr(3),
		StartTime: start, EndTime: start.Add(time.Hour), Status: StatusConfirmed,
	}, nil)
	repo.On("UpdateStatus", mock.Anything, int64(1), int64(5), StatusConfirmed, StatusCancelledByMember).Return(nil)
	dir.On("GetServiceByID", mock.Anything, int64(1), int64(3)).Return(&directory.Service{
		ID: 3, OrganizationID: 1, Name: "Yoga", DurationMinutes: 60,
	}, nil)
	dir.On("GetUserByID", mock.Anything, int64(1), int64(4)).Return(member, nil)
	notifier.On("BookingCancelled", mock.Anything, member, "Yoga", start).Return(nil)

	err := svc.Cancel(context.Background(), 1, 5, false)
	require.NoError(t, err)
	notifier.AssertExpectations(t)
}

// A notification enqueue failure never fails the cancellation itself.
func TestCancelNoticeFailureIsSwallowed(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	repo := new(MockBookingRepo)
	dir := new(MockDirectoryRepo)
	notifier := new(MockCancellationNotifier)
	detector := NewDetector(repo, new(MockStaffRepo), dir)
	svc := NewService(repo, dir, detector, new(MockPromoter), notifier)

	member := memberFixture(4)
	repo.On("GetByID", mock.Anything, int64(1), int64(5)).Return(&Booking{
		ID: 5, OrganizationID: 1, UserID: 4,
		StartTime: start, EndTime: start.Add(time.Hour), Status: StatusConfirmed,
	}, nil)
	repo.On("UpdateStatus", mock.Anything, int64(1), int64(5), StatusConfirmed, StatusCancelledByMember).Return(nil)
	dir.On("GetUserByID", mock.Anything, int64(1), int64(4)).Return(member, nil)
	notifier.On("BookingCancelled", mock.Anything, member, "Booking", start).Return(assert.AnError)

	err := svc.Cancel(context.Background(), 1, 5, false)
	require.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestCancelByStaffSetsStaffStatus(t *testing.T) {
	repo := new(MockBookingRepo)
	svc := newTestService(repo, new(MockStaffRepo), new(MockDirectoryRepo), new(MockPromoter))

	repo.On("GetByID", mock.Anything, int64(1), int64(5)).Return(&Booking{
		ID: 5, OrganizationID: 1, UserID: 4, Status: StatusConfirmed,
	}, nil)
	repo.On("UpdateStatus", mock.Anything, int64(1), int64(5), StatusConfirmed, StatusCancelledByStaff).Return(nil)

	err := svc.Cancel(context.Background(), 1, 5, true)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCancelTerminalBookingRejected(t *testing.T) {
	repo := new(MockBookingRepo)
	svc := newTestService(repo, new(MockStaffRepo), new(MockDirectoryRepo), new(MockPromoter))

	repo.On("GetByID", mock.Anything, int64(1), int64(5)).Return(&Booking{
		ID: 5, OrganizationID: 1, Status: StatusNoShow,
	}, nil)

	err := svc.Cancel(context.Background(), 1, 5, false)
	assert.True(t, apperr.IsValidation(err))
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"confirmed to attended", StatusConfirmed, StatusAttended, true},
		{"confirmed to no-show", StatusConfirmed, StatusNoShow, true},
		{"pending straight to attended", StatusPending, StatusAttended, false},
		{"attended is terminal", StatusAttended, StatusConfirmed, false},
		{"cancelled is terminal", StatusCancelledByStaff, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockBookingRepo)
			svc := newTestService(repo, new(MockStaffRepo), new(MockDirectoryRepo), new(MockPromoter))

			repo.On("GetByID", mock.Anything, int64(1), int64(5)).Return(&Booking{
				ID: 5, OrganizationID: 1, Status: tt.from,
			}, nil)
			if tt.allowed {
				repo.On("UpdateStatus", mock.Anything, int64(1), int64(5), tt.from, tt.to).Return(nil)
			}

			err := svc.Transition(context.Background(), 1, 5, tt.to)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperr.IsValidation(err))
			}
		})
	}
}
