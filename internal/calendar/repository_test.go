package calendar

import (
	"context"
	"testing"
	"time"

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

func eventRows(events ...Event) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "title", "start_time", "end_time", "status",
		"member_name", "staff_name", "service_name", "resource_name", "is_recurring",
	})
	for _, e := range events {
		rows.AddRow(e.ID, e.Title, e.Start, e.End, e.Status,
			e.MemberName, e.StaffName, e.ServiceName, e.ResourceName, e.IsRecurring)
	}
	return rows
}

func TestRepositoryEventsWindowOnly(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mock.ExpectQuery("FROM bookings b").
		WithArgs(int64(1), to, from).
		WillReturnRows(eventRows(Event{
			ID: 55, Title: "Spin Class", Start: from.Add(9 * time.Hour), End: from.Add(10 * time.Hour),
			Status: "confirmed", MemberName: "Ana Silva", ServiceName: "Spin Class", IsRecurring: true,
		}))

	events, err := repo.Events(context.Background(), Filter{OrganizationID: 1, From: from, To: to})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].IsRecurring)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryEventsAppendsOptionalFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	staffID := int64(9)
	serviceID := int64(7)

	mock.ExpectQuery(`b.staff_id = \$4 AND b.service_id = \$5`).
		WithArgs(int64(1), to, from, staffID, serviceID).
		WillReturnRows(eventRows())

	events, err := repo.Events(context.Background(), Filter{
		OrganizationID: 1, From: from, To: to,
		StaffID: &staffID, ServiceID: &serviceID,
	})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}
