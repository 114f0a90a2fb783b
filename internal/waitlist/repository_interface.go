package waitlist

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, entryID int64) (*Entry, error)
	// Join appends the entry at position max+1 for its service. A second
	// entry for the same (service, user) pair fails with a validation
	// error.
	Join(ctx context.Context, e *Entry) (*Entry, error)
	// Remove deletes the entry and compacts every higher position of the
	// same service, all in one transaction.
	Remove(ctx context.Context, entryID int64) error
	// Reorder moves the entry to newPosition, shifting the entries in
	// between; the range updates and the point update commit together or
	// not at all.
	Reorder(ctx context.Context, entryID int64, newPosition int) error
	// PositionOf returns 0 when the user has no entry for the service.
	PositionOf(ctx context.Context, serviceID, userID int64) (int, error)
	ActiveInOrder(ctx context.Context, serviceID int64, limit int) ([]Entry, error)
	ListByService(ctx context.Context, serviceID int64) ([]Entry, error)
	MarkNotified(ctx context.Context, entryID int64, notifiedAt, expiresAt time.Time) error
}
