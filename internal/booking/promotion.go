package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PromotionCreator creates confirmed bookings on behalf of the waitlist
// manager. It deliberately bypasses the conflict detector: the promotion
// path has already computed free capacity, and the database constraints
// remain the backstop.
type PromotionCreator struct {
	repo Repository
}

func NewPromotionCreator(repo Repository) *PromotionCreator {
	return &PromotionCreator{repo: repo}
}

func (p *PromotionCreator) CreateConfirmed(ctx context.Context, organizationID, serviceID, userID int64, start, end time.Time) (int64, error) {
	created, err := p.repo.Create(ctx, &Booking{
		Reference:      uuid.NewString(),
		OrganizationID: organizationID,
		UserID:         userID,
		ServiceID:      &serviceID,
		StartTime:      start,
		EndTime:        end,
		Status:         StatusConfirmed,
		Type:           "waitlist_promotion",
	})
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (p *PromotionCreator) CountActiveOverlapping(ctx context.Context, organizationID, serviceID int64, start, end time.Time) (int, error) {
	return p.repo.CountOverlappingForService(ctx, organizationID, serviceID, start, end, nil)
}
