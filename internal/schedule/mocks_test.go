package schedule

import (
	"context"
	"os"
	"testing"
	"time"

	"bookwise/internal/booking"
	"bookwise/internal/directory"
	"bookwise/internal/logger"

	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type MockScheduleRepo struct{ mock.Mock }
type MockBookingStore struct{ mock.Mock }
type MockDirectoryRepo struct{ mock.Mock }

func (m *MockScheduleRepo) Create(ctx context.Context, s *RecurringSchedule) (*RecurringSchedule, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RecurringSchedule), args.Error(1)
}

func (m *MockScheduleRepo) GetByID(ctx context.Context, organizationID, id int64) (*RecurringSchedule, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RecurringSchedule), args.Error(1)
}

func (m *MockScheduleRepo) Update(ctx context.Context, s *RecurringSchedule) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockScheduleRepo) Delete(ctx context.Context, organizationID, id int64) error {
	return m.Called(ctx, organizationID, id).Error(0)
}

func (m *MockScheduleRepo) ListByService(ctx context.Context, organizationID, serviceID int64) ([]RecurringSchedule, error) {
	args := m.Called(ctx, organizationID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RecurringSchedule), args.Error(1)
}

func (m *MockScheduleRepo) CreateException(ctx context.Context, ex *RecurrenceException) (*RecurrenceException, error) {
	args := m.Called(ctx, ex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RecurrenceException), args.Error(1)
}

func (m *MockScheduleRepo) ListExceptions(ctx context.Context, scheduleID int64) ([]RecurrenceException, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RecurrenceException), args.Error(1)
}

func (m *MockScheduleRepo) DeleteException(ctx context.Context, scheduleID, exceptionID int64) error {
	return m.Called(ctx, scheduleID, exceptionID).Error(0)
}

func (m *MockBookingStore) CreateInstance(ctx context.Context, b *booking.Booking) (bool, error) {
	args := m.Called(ctx, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingStore) DeleteFutureBySchedule(ctx context.Context, scheduleID int64, from time.Time) (int64, error) {
	args := m.Called(ctx, scheduleID, from)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDirectoryRepo) GetServiceByID(ctx context.Context, organizationID, serviceID int64) (*directory.Service, error) {
	args := m.Called(ctx, organizationID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Service), args.Error(1)
}

func (m *MockDirectoryRepo) GetResourceByID(ctx context.Context, organizationID, resourceID int64) (*directory.Resource, error) {
	args := m.Called(ctx, organizationID, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Resource), args.Error(1)
}

func (m *MockDirectoryRepo) GetLocationByID(ctx context.Context, organizationID, locationID int64) (*directory.Location, error) {
	args := m.Called(ctx, organizationID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Location), args.Error(1)
}

func (m *MockDirectoryRepo) GetUserByID(ctx context.Context, organizationID, userID int64) (*directory.User, error) {
	args := m.Called(ctx, organizationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.User), args.Error(1)
}
