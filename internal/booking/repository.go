package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookwise/internal/apperr"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const bookingColumns = `
	id, reference, organization_id, user_id, service_id, staff_id, resource_id, location_id,
	start_time, end_time, all_day, status, type, notes, private_notes,
	price_cents, credits_used, recurring_schedule_id, instance_date, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking) (*Booking, error) {
	query := `
		INSERT INTO bookings (
			reference, organization_id, user_id, service_id, staff_id, resource_id, location_id,
			start_time, end_time, all_day, status, type, notes, private_notes,
			price_cents, credits_used, recurring_schedule_id, instance_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING ` + bookingColumns

	var created Booking
	err := r.db.GetContext(ctx, &created, query,
		b.Reference, b.OrganizationID, b.UserID, b.ServiceID, b.StaffID, b.ResourceID, b.LocationID,
		b.StartTime, b.EndTime, b.AllDay, b.Status, b.Type, b.Notes, b.PrivateNotes,
		b.PriceCents, b.CreditsUsed, b.RecurringScheduleID, b.InstanceDate,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, organizationID, id int64) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND organization_id = $2`

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id, organizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "booking not found")
	}
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *repository) Update(ctx context.Context, b *Booking) error {
	query := `
		UPDATE bookings
		SET start_time = $1, end_time = $2, staff_id = $3, resource_id = $4,
		    notes = $5, private_notes = $6, updated_at = NOW()
		WHERE id = $7 AND organization_id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		b.StartTime, b.EndTime, b.StaffID, b.ResourceID,
		b.Notes, b.PrivateNotes, b.ID, b.OrganizationID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperr.E(apperr.KindNotFound, "booking not found")
	}

	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, organizationID, id int64, from, to Status) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND organization_id = $3 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query, to, id, organizationID, from)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperr.E(apperr.KindNotFound, "booking not found or status changed concurrently")
	}

	return nil
}

func (r *repository) FindOverlapping(ctx context.Context, f OverlapFilter) ([]Booking, error) {
	conditions := []string{
		"organization_id = $1",
		"start_time < $2",
		"end_time > $3",
		"status = ANY($4)",
	}
	args := []interface{}{f.OrganizationID, f.End, f.Start, pq.Array(BlockingStatusStrings())}

	appendCond := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if f.StaffID != nil {
		appendCond("staff_id", *f.StaffID)
	}
	if f.ResourceID != nil {
		appendCond("resource_id", *f.ResourceID)
	}
	if f.UserID != nil {
		appendCond("user_id", *f.UserID)
	}
	if f.ServiceID != nil {
		appendCond("service_id", *f.ServiceID)
	}
	if f.ExcludeBookingID != nil {
		args = append(args, *f.ExcludeBookingID)
		conditions = append(conditions, fmt.Sprintf("id <> $%d", len(args)))
	}

	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY start_time, id`

	var bookings []Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) CountOverlappingForService(ctx context.Context, organizationID, serviceID int64, start, end time.Time, excludeBookingID *int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE organization_id = $1 AND service_id = $2
		  AND start_time < $3 AND end_time > $4
		  AND status = ANY($5)
		  AND ($6::bigint IS NULL OR id <> $6)
	`

	var count int
	err := r.db.GetContext(ctx, &count, query,
		organizationID, serviceID, end, start, pq.Array(BlockingStatusStrings()), excludeBookingID,
	)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repository) ListByUser(ctx context.Context, organizationID, userID int64) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE organization_id = $1 AND user_id = $2
		ORDER BY start_time DESC`

	var bookings []Booking
	if err := r.db.SelectContext(ctx, &bookings, query, organizationID, userID); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) CreateInstance(ctx context.Context, b *Booking) (bool, error) {
	query := `
		INSERT INTO bookings (
			reference, organization_id, user_id, service_id, staff_id, resource_id, location_id,
			start_time, end_time, all_day, status, type, notes, private_notes,
			price_cents, credits_used, recurring_schedule_id, instance_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (recurring_schedule_id, instance_date) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		b.Reference, b.OrganizationID, b.UserID, b.ServiceID, b.StaffID, b.ResourceID, b.LocationID,
		b.StartTime, b.EndTime, b.AllDay, b.Status, b.Type, b.Notes, b.PrivateNotes,
		b.PriceCents, b.CreditsUsed, b.RecurringScheduleID, b.InstanceDate,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *repository) DeleteFutureBySchedule(ctx context.Context, scheduleID int64, from time.Time) (int64, error) {
	query := `
		DELETE FROM bookings
		WHERE recurring_schedule_id = $1 AND start_time > $2
	`

	result, err := r.db.ExecContext(ctx, query, scheduleID, from)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
