package booking

import (
	"context"
	"testing"
	"time"

	"bookwise/internal/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func TestRepositoryUpdateStatusGuard(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec("UPDATE bookings").
		WithArgs(StatusCancelledByMember, int64(5), int64(1), StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), 1, 5, StatusConfirmed, StatusCancelledByMember)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateStatusConcurrentChange(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec("UPDATE bookings").
		WithArgs(StatusCancelledByMember, int64(5), int64(1), StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 1, 5, StatusConfirmed, StatusCancelledByMember)
	assert.True(t, apperr.IsNotFound(err))
}

func TestRepositoryFindOverlappingBuildsScopedQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	rows := sqlmock.NewRows([]string{"id", "reference", "organization_id", "user_id", "service_id", "staff_id", "resource_id", "location_id",
		"start_time", "end_time", "all_day", "status", "type", "notes", "private_notes",
		"price_cents", "credits_used", "recurring_schedule_id", "instance_date", "created_at", "updated_at"}).
		AddRow(55, "ref-55", 1, 4, nil, 9, nil, nil,
			start, end, false, "confirmed", "", "", "",
			nil, nil, nil, nil, time.Now(), time.Now())

	mock.ExpectQuery("SELECT(.|\n)+FROM bookings(.|\n)+staff_id = \\$5(.|\n)+id <> \\$6").
		WithArgs(int64(1), end, start, sqlmock.AnyArg(), int64(9), int64(5)).
		WillReturnRows(rows)

	got, err := repo.FindOverlapping(context.Background(), OverlapFilter{
		OrganizationID:   1,
		StaffID:          int64Ptr(9),
		Start:            start,
		End:              end,
		ExcludeBookingID: int64Ptr(5),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(55), got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateInstanceIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	scheduleID := int64(8)
	instanceDate := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	b := &Booking{
		Reference:           "ref-1",
		OrganizationID:      1,
		UserID:              4,
		StartTime:           instanceDate,
		EndTime:             instanceDate.Add(time.Hour),
		Status:              StatusConfirmed,
		RecurringScheduleID: &scheduleID,
		InstanceDate:        &instanceDate,
	}

	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	inserted, err := repo.CreateInstance(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, inserted)

	// second run hits ON CONFLICT DO NOTHING
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 0))
	inserted, err = repo.CreateInstance(context.Background(), b)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestRepositoryDeleteFutureBySchedule(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("DELETE FROM bookings").
		WithArgs(int64(8), now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := repo.DeleteFutureBySchedule(context.Background(), 8, now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}
