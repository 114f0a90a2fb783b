package staff

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WindowsOn(ctx context.Context, userID int64, date time.Time) ([]Availability, error) {
	query := `
		SELECT id, user_id, day_of_week, start_time, end_time, specific_date, is_available, notes
		FROM staff_availability
		WHERE user_id = $1
		  AND (specific_date = $2 OR (specific_date IS NULL AND day_of_week = $3))
		ORDER BY specific_date NULLS LAST, start_time
	`

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var windows []Availability
	err := r.db.SelectContext(ctx, &windows, query, userID, day, int(date.Weekday()))
	if err != nil {
		return nil, err
	}

	return windows, nil
}
