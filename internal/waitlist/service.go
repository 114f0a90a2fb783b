package waitlist

import (
	"context"
	"time"

	"bookwise/internal/apperr"
	"bookwise/internal/directory"
	"bookwise/internal/logger"
	"bookwise/internal/metrics"
)

const defaultNotifyExpiry = 24 * time.Hour

// BookingCreator is the slice of the booking layer auto-promotion needs.
// Implemented by booking.PromotionCreator; wired in the server.
type BookingCreator interface {
	CreateConfirmed(ctx context.Context, organizationID, serviceID, userID int64, start, end time.Time) (int64, error)
	CountActiveOverlapping(ctx context.Context, organizationID, serviceID int64, start, end time.Time) (int, error)
}

// Notifier records that a member should be told about a waitlist event.
// Delivery is the notification collaborator's problem.
type Notifier interface {
	WaitlistSpotAvailable(ctx context.Context, user *directory.User, serviceName string, expiresAt time.Time, byEmail, bySms bool) error
	WaitlistPromoted(ctx context.Context, user *directory.User, serviceName string, start time.Time) error
}

type Service interface {
	Join(ctx context.Context, organizationID, serviceID int64, req JoinRequest) (*Entry, error)
	Leave(ctx context.Context, organizationID, entryID int64) error
	Reorder(ctx context.Context, organizationID, entryID int64, newPosition int) error
	PositionOf(ctx context.Context, serviceID, userID int64) (int, error)
	Notify(ctx context.Context, organizationID, entryID int64, expiresAt *time.Time) (*Entry, error)
	ListByService(ctx context.Context, organizationID, serviceID int64) ([]Entry, error)
	AutoPromoteAfterCancellation(ctx context.Context, organizationID, serviceID int64, freedStart, freedEnd time.Time) error
}

type service struct {
	repo      Repository
	directory directory.Repository
	creator   BookingCreator
	notifier  Notifier
	now       func() time.Time
}

func NewService(repo Repository, dir directory.Repository, creator BookingCreator, notifier Notifier) Service {
	return &service{
		repo:      repo,
		directory: dir,
		creator:   creator,
		notifier:  notifier,
		now:       time.Now,
	}
}

func (s *service) Join(ctx context.Context, organizationID, serviceID int64, req JoinRequest) (*Entry, error) {
	if _, err := s.directory.GetServiceByID(ctx, organizationID, serviceID); err != nil {
		return nil, err
	}
	if _, err := s.directory.GetUserByID(ctx, organizationID, req.UserID); err != nil {
		return nil, err
	}

	position, err := s.repo.PositionOf(ctx, serviceID, req.UserID)
	if err != nil {
		return nil, err
	}
	if position > 0 {
		return nil, apperr.E(apperr.KindValidation, "user is already on the waitlist for this service")
	}

	entry, err := s.repo.Join(ctx, &Entry{
		OrganizationID: organizationID,
		ServiceID:      serviceID,
		UserID:         req.UserID,
		NotifyByEmail:  req.NotifyByEmail,
		NotifyBySms:    req.NotifyBySms,
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWaitlistJoin()
	return entry, nil
}

func (s *service) Leave(ctx context.Context, organizationID, entryID int64) error {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.OrganizationID != organizationID {
		return apperr.E(apperr.KindNotFound, "waitlist entry not found")
	}

	return s.repo.Remove(ctx, entryID)
}

func (s *service) Reorder(ctx context.Context, organizationID, entryID int64, newPosition int) error {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.OrganizationID != organizationID {
		return apperr.E(apperr.KindNotFound, "waitlist entry not found")
	}

	return s.repo.Reorder(ctx, entryID, newPosition)
}

func (s *service) PositionOf(ctx context.Context, serviceID, userID int64) (int, error) {
	return s.repo.PositionOf(ctx, serviceID, userID)
}

// Notify stamps notified_at/expires_at and queues the notification. The
// entry keeps its position; removing stale notified entries is an external
// job's responsibility.
func (s *service) Notify(ctx context.Context, organizationID, entryID int64, expiresAt *time.Time) (*Entry, error) {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.OrganizationID != organizationID {
		return nil, apperr.E(apperr.KindNotFound, "waitlist entry not found")
	}

	notifiedAt := s.now()
	expiry := notifiedAt.Add(defaultNotifyExpiry)
	if expiresAt != nil {
		expiry = *expiresAt
	}

	if err := s.repo.MarkNotified(ctx, entryID, notifiedAt, expiry); err != nil {
		return nil, err
	}
	entry.NotifiedAt = &notifiedAt
	entry.ExpiresAt = &expiry

	if s.notifier != nil {
		user, err := s.directory.GetUserByID(ctx, organizationID, entry.UserID)
		if err != nil {
			logger.Errorf("looking up user %d for waitlist notification: %v", entry.UserID, err)
			return entry, nil
		}
		svc, err := s.directory.GetServiceByID(ctx, organizationID, entry.ServiceID)
		if err != nil {
			logger.Errorf("looking up service %d for waitlist notification: %v", entry.ServiceID, err)
			return entry, nil
		}
		if err := s.notifier.WaitlistSpotAvailable(ctx, user, svc.Name, expiry, entry.NotifyByEmail, entry.NotifyBySms); err != nil {
			logger.Errorf("queueing waitlist notification for entry %d: %v", entryID, err)
		}
	}

	return entry, nil
}

func (s *service) ListByService(ctx context.Context, organizationID, serviceID int64) ([]Entry, error) {
	if _, err := s.directory.GetServiceByID(ctx, organizationID, serviceID); err != nil {
		return nil, err
	}
	return s.repo.ListByService(ctx, serviceID)
}

// AutoPromoteAfterCancellation books the front of the queue into capacity
// freed by a cancellation. The freed booking's own window is the capacity
// window; promoted bookings run for the service's configured duration from
// the freed start. Per-entry failures are logged and skipped so the rest of
// the queue still advances; they never fail the triggering cancellation.
func (s *service) AutoPromoteAfterCancellation(ctx context.Context, organizationID, serviceID int64, freedStart, freedEnd time.Time) error {
	svc, err := s.directory.GetServiceByID(ctx, organizationID, serviceID)
	if err != nil {
		return err
	}
	if svc.Capacity == nil {
		return nil
	}

	booked, err := s.creator.CountActiveOverlapping(ctx, organizationID, serviceID, freedStart, freedEnd)
	if err != nil {
		return err
	}

	availableSpots := *svc.Capacity - booked
	if availableSpots <= 0 {
		return nil
	}

	entries, err := s.repo.ActiveInOrder(ctx, serviceID, availableSpots)
	if err != nil {
		return err
	}

	end := freedEnd
	if svc.DurationMinutes > 0 {
		end = freedStart.Add(time.Duration(svc.DurationMinutes) * time.Minute)
	}

	for _, entry := range entries {
		bookingID, err := s.creator.CreateConfirmed(ctx, organizationID, serviceID, entry.UserID, freedStart, end)
		if err != nil {
			logger.Errorf("auto-promoting waitlist entry %d (user %d): %v", entry.ID, entry.UserID, err)
			metrics.RecordWaitlistPromotionSkip()
			continue
		}

		if err := s.repo.Remove(ctx, entry.ID); err != nil {
			logger.Errorf("removing promoted waitlist entry %d: %v", entry.ID, err)
			metrics.RecordWaitlistPromotionSkip()
			continue
		}

		metrics.RecordWaitlistPromotion()
		logger.Info("waitlist entry promoted",
			"entry_id", entry.ID, "user_id", entry.UserID, "service_id", serviceID, "booking_id", bookingID)

		if s.notifier != nil {
			user, err := s.directory.GetUserByID(ctx, organizationID, entry.UserID)
			if err == nil {
				if err := s.notifier.WaitlistPromoted(ctx, user, svc.Name, freedStart); err != nil {
					logger.Errorf("queueing promotion notification for entry %d: %v", entry.ID, err)
				}
			}
		}
	}

	return nil
}
