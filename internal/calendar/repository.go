package calendar

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Events(ctx context.Context, f Filter) ([]Event, error) {
	query := `
		SELECT
			b.id,
			COALESCE(NULLIF(b.notes, ''), s.name, 'Booking') AS title,
			b.start_time,
			b.end_time,
			b.status,
			CONCAT_WS(' ', u.first_name, u.last_name) AS member_name,
			CONCAT_WS(' ', st.first_name, st.last_name) AS staff_name,
			COALESCE(s.name, '') AS service_name,
			COALESCE(r.name, '') AS resource_name,
			b.recurring_schedule_id IS NOT NULL AS is_recurring
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		LEFT JOIN users st ON st.id = b.staff_id
		LEFT JOIN services s ON s.id = b.service_id
		LEFT JOIN resources r ON r.id = b.resource_id
		WHERE b.organization_id = $1
		  AND b.start_time < $2
		  AND b.end_time > $3`

	args := []interface{}{f.OrganizationID, f.To, f.From}

	appendCond := func(column string, value *int64) {
		if value != nil {
			args = append(args, *value)
			query += fmt.Sprintf(" AND %s = $%d", column, len(args))
		}
	}
	appendCond("b.staff_id", f.StaffID)
	appendCond("b.user_id", f.UserID)
	appendCond("b.service_id", f.ServiceID)
	appendCond("b.resource_id", f.ResourceID)

	query += " ORDER BY b.start_time, b.id"
	query = strings.TrimSpace(query)

	var events []Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, err
	}

	return events, nil
}
