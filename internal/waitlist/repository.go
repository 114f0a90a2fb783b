package waitlist

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookwise/internal/apperr"
	"bookwise/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const entryColumns = `
	id, organization_id, service_id, user_id, position, joined_at,
	notified_at, expires_at, notify_by_email, notify_by_sms, is_active`

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) GetByID(ctx context.Context, entryID int64) (*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM waitlist_entries WHERE id = $1`

	var e Entry
	err := r.db.GetContext(ctx, &e, query, entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "waitlist entry not found")
	}
	if err != nil {
		return nil, err
	}

	return &e, nil
}

func (r *repository) Join(ctx context.Context, e *Entry) (*Entry, error) {
	// Two concurrent joins each see the same MAX(position) under read
	// committed, so the tail read is serialized with a per-service
	// advisory lock held until commit. The deferred unique constraint on
	// (service_id, position) backstops the invariant.
	var created Entry
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`SELECT pg_advisory_xact_lock($1)`, e.ServiceID); err != nil {
			return err
		}

		query := `
			INSERT INTO waitlist_entries (
				organization_id, service_id, user_id, position,
				notify_by_email, notify_by_sms, is_active
			)
			VALUES (
				$1, $2, $3,
				(SELECT COALESCE(MAX(position), 0) + 1 FROM waitlist_entries WHERE service_id = $2),
				$4, $5, TRUE
			)
			RETURNING ` + entryColumns

		return tx.GetContext(ctx, &created, query,
			e.OrganizationID, e.ServiceID, e.UserID, e.NotifyByEmail, e.NotifyBySms,
		)
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperr.E(apperr.KindValidation, "user is already on the waitlist for this service")
		}
		return nil, err
	}

	return &created, nil
}

func (r *repository) Remove(ctx context.Context, entryID int64) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return removeInTx(ctx, tx, entryID)
	})
}

// removeInTx deletes the entry and closes the position gap. Positions
// stay contiguous from 1, so everything after the removed entry shifts
// down by one inside the same transaction.
func removeInTx(ctx context.Context, tx *sqlx.Tx, entryID int64) error {
	var e Entry
	err := tx.GetContext(ctx, &e,
		`SELECT `+entryColumns+` FROM waitlist_entries WHERE id = $1 FOR UPDATE`, entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.E(apperr.KindNotFound, "waitlist entry not found")
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM waitlist_entries WHERE id = $1`, entryID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE waitlist_entries
		SET position = position - 1
		WHERE service_id = $1 AND position > $2
	`, e.ServiceID, e.Position)
	return err
}

func (r *repository) Reorder(ctx context.Context, entryID int64, newPosition int) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var e Entry
		err := tx.GetContext(ctx, &e,
			`SELECT `+entryColumns+` FROM waitlist_entries WHERE id = $1 FOR UPDATE`, entryID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.E(apperr.KindNotFound, "waitlist entry not found")
		}
		if err != nil {
			return err
		}

		var count int
		if err := tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM waitlist_entries WHERE service_id = $1`, e.ServiceID); err != nil {
			return err
		}

		if newPosition < 1 || newPosition > count {
			return apperr.Ef(apperr.KindValidation, "position %d out of range 1..%d", newPosition, count)
		}
		if newPosition == e.Position {
			return nil
		}

		if newPosition < e.Position {
			// moving up: push [newPosition, oldPosition) down by one
			if _, err := tx.ExecContext(ctx, `
				UPDATE waitlist_entries
				SET position = position + 1
				WHERE service_id = $1 AND position >= $2 AND position < $3
			`, e.ServiceID, newPosition, e.Position); err != nil {
				return err
			}
		} else {
			// moving down: pull (oldPosition, newPosition] up by one
			if _, err := tx.ExecContext(ctx, `
				UPDATE waitlist_entries
				SET position = position - 1
				WHERE service_id = $1 AND position > $2 AND position <= $3
			`, e.ServiceID, e.Position, newPosition); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE waitlist_entries SET position = $1 WHERE id = $2`, newPosition, entryID)
		return err
	})
}

func (r *repository) PositionOf(ctx context.Context, serviceID, userID int64) (int, error) {
	query := `
		SELECT COALESCE(
			(SELECT position FROM waitlist_entries WHERE service_id = $1 AND user_id = $2),
			0
		)
	`

	var position int
	if err := r.db.GetContext(ctx, &position, query, serviceID, userID); err != nil {
		return 0, err
	}

	return position, nil
}

func (r *repository) ActiveInOrder(ctx context.Context, serviceID int64, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM waitlist_entries
		WHERE service_id = $1 AND is_active
		ORDER BY position
		LIMIT $2`

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, serviceID, limit); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *repository) ListByService(ctx context.Context, serviceID int64) ([]Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM waitlist_entries
		WHERE service_id = $1
		ORDER BY position`

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, serviceID); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *repository) MarkNotified(ctx context.Context, entryID int64, notifiedAt, expiresAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE waitlist_entries
		SET notified_at = $1, expires_at = $2
		WHERE id = $3
	`, notifiedAt, expiresAt, entryID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperr.E(apperr.KindNotFound, "waitlist entry not found")
	}

	return nil
}
