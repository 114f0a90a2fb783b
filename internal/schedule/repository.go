package schedule

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookwise/internal/apperr"
	"bookwise/internal/db"

	"github.com/jmoiron/sqlx"
)

const scheduleColumns = `
	id, organization_id, service_id, user_id, staff_id, resource_id, location_id,
	frequency, interval, count, until,
	by_weekday, by_month_day, by_month, by_set_pos, by_year_day, by_week_no,
	week_start, dtstart, dtend, timezone, start_time, duration_minutes,
	description, created_at, updated_at`

const exceptionColumns = `id, schedule_id, original_date_time, exception_type, new_start_time, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Create(ctx context.Context, s *RecurringSchedule) (*RecurringSchedule, error) {
	var created RecurringSchedule
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO recurring_schedules (
				organization_id, service_id, user_id, staff_id, resource_id, location_id,
				frequency, interval, count, until,
				by_weekday, by_month_day, by_month, by_set_pos, by_year_day, by_week_no,
				week_start, dtstart, dtend, timezone, start_time, duration_minutes, description
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
				$17, $18, $19, $20, $21, $22, $23)
			RETURNING ` + scheduleColumns

		if err := tx.GetContext(ctx, &created, query,
			s.OrganizationID, s.ServiceID, s.UserID, s.StaffID, s.ResourceID, s.LocationID,
			s.Frequency, s.Interval, s.Count, s.Until,
			s.ByWeekday, s.ByMonthDay, s.ByMonth, s.BySetPos, s.ByYearDay, s.ByWeekNo,
			s.WeekStart, s.DtStart, s.DtEnd, s.Timezone, s.StartTime, s.DurationMinutes, s.Description,
		); err != nil {
			return err
		}

		return insertExdates(ctx, tx, created.ID, s.Exdates)
	})
	if err != nil {
		return nil, err
	}

	created.Exdates = s.Exdates
	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, organizationID, id int64) (*RecurringSchedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM recurring_schedules
		WHERE id = $1 AND organization_id = $2`

	var s RecurringSchedule
	err := r.db.GetContext(ctx, &s, query, id, organizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "recurring schedule not found")
	}
	if err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &s.Exdates,
		`SELECT exdate FROM schedule_exdates WHERE schedule_id = $1 ORDER BY exdate`, id); err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *repository) Update(ctx context.Context, s *RecurringSchedule) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE recurring_schedules
			SET service_id = $1, user_id = $2, staff_id = $3, resource_id = $4, location_id = $5,
				frequency = $6, interval = $7, count = $8, until = $9,
				by_weekday = $10, by_month_day = $11, by_month = $12, by_set_pos = $13,
				by_year_day = $14, by_week_no = $15,
				week_start = $16, dtstart = $17, dtend = $18, timezone = $19,
				start_time = $20, duration_minutes = $21, description = $22, updated_at = NOW()
			WHERE id = $23 AND organization_id = $24`

		result, err := tx.ExecContext(ctx, query,
			s.ServiceID, s.UserID, s.StaffID, s.ResourceID, s.LocationID,
			s.Frequency, s.Interval, s.Count, s.Until,
			s.ByWeekday, s.ByMonthDay, s.ByMonth, s.BySetPos, s.ByYearDay, s.ByWeekNo,
			s.WeekStart, s.DtStart, s.DtEnd, s.Timezone,
			s.StartTime, s.DurationMinutes, s.Description, s.ID, s.OrganizationID,
		)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return apperr.E(apperr.KindNotFound, "recurring schedule not found")
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM schedule_exdates WHERE schedule_id = $1`, s.ID); err != nil {
			return err
		}
		return insertExdates(ctx, tx, s.ID, s.Exdates)
	})
}

func (r *repository) Delete(ctx context.Context, organizationID, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM recurring_schedules WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperr.E(apperr.KindNotFound, "recurring schedule not found")
	}

	return nil
}

func (r *repository) ListByService(ctx context.Context, organizationID, serviceID int64) ([]RecurringSchedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM recurring_schedules
		WHERE organization_id = $1 AND service_id = $2
		ORDER BY id`

	var schedules []RecurringSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, organizationID, serviceID); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *repository) CreateException(ctx context.Context, ex *RecurrenceException) (*RecurrenceException, error) {
	query := `
		INSERT INTO recurrence_exceptions (schedule_id, original_date_time, exception_type, new_start_time)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + exceptionColumns

	var created RecurrenceException
	err := r.db.GetContext(ctx, &created, query,
		ex.ScheduleID, ex.OriginalDateTime, ex.ExceptionType, ex.NewStartTime)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) ListExceptions(ctx context.Context, scheduleID int64) ([]RecurrenceException, error) {
	query := `SELECT ` + exceptionColumns + `
		FROM recurrence_exceptions
		WHERE schedule_id = $1
		ORDER BY original_date_time`

	var exceptions []RecurrenceException
	if err := r.db.SelectContext(ctx, &exceptions, query, scheduleID); err != nil {
		return nil, err
	}

	return exceptions, nil
}

func (r *repository) DeleteException(ctx context.Context, scheduleID, exceptionID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM recurrence_exceptions WHERE id = $1 AND schedule_id = $2`, exceptionID, scheduleID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperr.E(apperr.KindNotFound, "recurrence exception not found")
	}

	return nil
}

func insertExdates(ctx context.Context, tx *sqlx.Tx, scheduleID int64, exdates []time.Time) error {
	for _, exdate := range exdates {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schedule_exdates (schedule_id, exdate) VALUES ($1, $2)`,
			scheduleID, exdate); err != nil {
			return err
		}
	}
	return nil
}
