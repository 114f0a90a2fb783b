package booking

import (
	"context"
	"time"

	"bookwise/internal/apperr"
	"bookwise/internal/directory"
	"bookwise/internal/logger"
	"bookwise/internal/metrics"

	"github.com/google/uuid"
)

// WaitlistPromoter advances a service's waitlist after a cancellation frees
// capacity. Implemented by the waitlist package; wired in the server.
type WaitlistPromoter interface {
	AutoPromoteAfterCancellation(ctx context.Context, organizationID, serviceID int64, freedStart, freedEnd time.Time) error
}

// CancellationNotifier tells the booked member their slot was cancelled.
// Implemented by the notify package.
type CancellationNotifier interface {
	BookingCancelled(ctx context.Context, user *directory.User, serviceName string, start time.Time) error
}

type Service interface {
	Create(ctx context.Context, organizationID int64, req CreateBookingRequest) (*CreateBookingResponse, error)
	Get(ctx context.Context, organizationID, bookingID int64) (*Booking, error)
	Update(ctx context.Context, organizationID, bookingID int64, req UpdateBookingRequest) (*Booking, error)
	Cancel(ctx context.Context, organizationID, bookingID int64, byStaff bool) error
	Transition(ctx context.Context, organizationID, bookingID int64, to Status) error
	ListByUser(ctx context.Context, organizationID, userID int64) ([]Booking, error)
}

type service struct {
	repo      Repository
	directory directory.Repository
	detector  *Detector
	promoter  WaitlistPromoter
	notifier  CancellationNotifier
	now       func() time.Time
}

func NewService(repo Repository, dir directory.Repository, detector *Detector, promoter WaitlistPromoter, notifier CancellationNotifier) Service {
	return &service{
		repo:      repo,
		directory: dir,
		detector:  detector,
		promoter:  promoter,
		notifier:  notifier,
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, organizationID int64, req CreateBookingRequest) (*CreateBookingResponse, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, apperr.E(apperr.KindValidation, "start time must be before end time")
	}
	if req.StartTime.Before(s.now()) {
		return nil, apperr.E(apperr.KindValidation, "cannot create a booking in the past")
	}

	status := req.Status
	if status == "" {
		status = StatusConfirmed
	}
	if !ValidStatus(status) {
		return nil, apperr.Ef(apperr.KindValidation, "unknown booking status %q", status)
	}

	svc, err := s.resolveReferences(ctx, organizationID, req)
	if err != nil {
		return nil, err
	}

	result, err := s.detector.Check(ctx, CheckParams{
		OrganizationID: organizationID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		ServiceID:      req.ServiceID,
		ResourceID:     req.ResourceID,
		StaffID:        req.StaffID,
		UserID:         &req.UserID,
	})
	if err != nil {
		return nil, err
	}
	if result.HasConflict {
		return nil, apperr.E(apperr.KindConflict, "booking conflicts detected").WithDetails(result.Conflicts)
	}

	b := &Booking{
		Reference:      uuid.NewString(),
		OrganizationID: organizationID,
		UserID:         req.UserID,
		ServiceID:      req.ServiceID,
		StaffID:        req.StaffID,
		ResourceID:     req.ResourceID,
		LocationID:     req.LocationID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		AllDay:         req.AllDay,
		Status:         status,
		Type:           req.Type,
		Notes:          req.Notes,
		PrivateNotes:   req.PrivateNotes,
		PriceCents:     req.PriceCents,
		CreditsUsed:    req.CreditsUsed,
	}

	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	metrics.RecordBooking(string(created.Status))

	resp := &CreateBookingResponse{Booking: created}
	if svc != nil && svc.Capacity != nil {
		count, err := s.repo.CountOverlappingForService(ctx, organizationID, *req.ServiceID, req.StartTime, req.EndTime, nil)
		if err != nil {
			logger.Errorf("counting class occupancy after booking %d: %v", created.ID, err)
		} else {
			resp.ClassFull = count >= *svc.Capacity
		}
	}

	return resp, nil
}

// resolveReferences validates that every referenced record belongs to the
// organization. Returns the service record when one is referenced, since
// Create needs its capacity afterwards.
func (s *service) resolveReferences(ctx context.Context, organizationID int64, req CreateBookingRequest) (*directory.Service, error) {
	if _, err := s.directory.GetUserByID(ctx, organizationID, req.UserID); err != nil {
		return nil, err
	}

	var svc *directory.Service
	if req.ServiceID != nil {
		found, err := s.directory.GetServiceByID(ctx, organizationID, *req.ServiceID)
		if err != nil {
			return nil, err
		}
		svc = found
	}
	if req.StaffID != nil {
		if _, err := s.directory.GetUserByID(ctx, organizationID, *req.StaffID); err != nil {
			return nil, err
		}
	}
	if req.ResourceID != nil {
		if _, err := s.directory.GetResourceByID(ctx, organizationID, *req.ResourceID); err != nil {
			return nil, err
		}
	}
	if req.LocationID != nil {
		if _, err := s.directory.GetLocationByID(ctx, organizationID, *req.LocationID); err != nil {
			return nil, err
		}
	}

	return svc, nil
}

func (s *service) Get(ctx context.Context, organizationID, bookingID int64) (*Booking, error) {
	return s.repo.GetByID(ctx, organizationID, bookingID)
}

func (s *service) Update(ctx context.Context, organizationID, bookingID int64, req UpdateBookingRequest) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, organizationID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status.Terminal() {
		return nil, apperr.Ef(apperr.KindValidation, "booking in terminal status %q cannot be updated", b.Status)
	}

	newStart, newEnd := b.StartTime, b.EndTime
	if req.StartTime != nil {
		newStart = *req.StartTime
	}
	if req.EndTime != nil {
		newEnd = *req.EndTime
	}
	if !newStart.Before(newEnd) {
		return nil, apperr.E(apperr.KindValidation, "start time must be before end time")
	}

	timesChanged := !newStart.Equal(b.StartTime) || !newEnd.Equal(b.EndTime)

	staffID := b.StaffID
	if req.StaffID != nil {
		if _, err := s.directory.GetUserByID(ctx, organizationID, *req.StaffID); err != nil {
			return nil, err
		}
		staffID = req.StaffID
	}
	resourceID := b.ResourceID
	if req.ResourceID != nil {
		if _, err := s.directory.GetResourceByID(ctx, organizationID, *req.ResourceID); err != nil {
			return nil, err
		}
		resourceID = req.ResourceID
	}

	if timesChanged || req.StaffID != nil || req.ResourceID != nil {
		result, err := s.detector.Check(ctx, CheckParams{
			OrganizationID:   organizationID,
			StartTime:        newStart,
			EndTime:          newEnd,
			ServiceID:        b.ServiceID,
			ResourceID:       resourceID,
			StaffID:          staffID,
			UserID:           &b.UserID,
			ExcludeBookingID: &b.ID,
		})
		if err != nil {
			return nil, err
		}
		if result.HasConflict {
			return nil, apperr.E(apperr.KindConflict, "booking conflicts detected").WithDetails(result.Conflicts)
		}
	}

	b.StartTime = newStart
	b.EndTime = newEnd
	b.StaffID = staffID
	b.ResourceID = resourceID
	if req.Notes != nil {
		b.Notes = *req.Notes
	}
	if req.PrivateNotes != nil {
		b.PrivateNotes = *req.PrivateNotes
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *service) Cancel(ctx context.Context, organizationID, bookingID int64, byStaff bool) error {
	b, err := s.repo.GetByID(ctx, organizationID, bookingID)
	if err != nil {
		return err
	}
	if b.Status.Terminal() {
		return apperr.Ef(apperr.KindValidation, "booking already in terminal status %q", b.Status)
	}

	to := StatusCancelledByMember
	actor := "member"
	if byStaff {
		to = StatusCancelledByStaff
		actor = "staff"
	}

	if err := s.repo.UpdateStatus(ctx, organizationID, bookingID, b.Status, to); err != nil {
		return err
	}
	metrics.RecordCancellation(actor)

	var svc *directory.Service
	if b.ServiceID != nil {
		if svc, err = s.directory.GetServiceByID(ctx, organizationID, *b.ServiceID); err != nil {
			logger.Errorf("lookup service %d for cancelled booking %d: %v", *b.ServiceID, bookingID, err)
		}
	}

	// A freed spot in a capacity-limited class may admit waitlisted
	// members. Promotion failure never fails the cancellation.
	if svc != nil && svc.Capacity != nil && s.promoter != nil {
		if err := s.promoter.AutoPromoteAfterCancellation(ctx, organizationID, *b.ServiceID, b.StartTime, b.EndTime); err != nil {
			logger.Errorf("waitlist auto-promotion after cancelling booking %d: %v", bookingID, err)
		}
	}

	if s.notifier != nil {
		user, uerr := s.directory.GetUserByID(ctx, organizationID, b.UserID)
		if uerr != nil {
			logger.Errorf("lookup user %d for cancelled booking %d: %v", b.UserID, bookingID, uerr)
		} else {
			serviceName := "Booking"
			if svc != nil {
				serviceName = svc.Name
			}
			if nerr := s.notifier.BookingCancelled(ctx, user, serviceName, b.StartTime); nerr != nil {
				logger.Errorf("queue cancellation notice for booking %d: %v", bookingID, nerr)
			}
		}
	}

	return nil
}

func (s *service) Transition(ctx context.Context, organizationID, bookingID int64, to Status) error {
	if !ValidStatus(to) {
		return apperr.Ef(apperr.KindValidation, "unknown booking status %q", to)
	}

	b, err := s.repo.GetByID(ctx, organizationID, bookingID)
	if err != nil {
		return err
	}
	if !CanTransition(b.Status, to) {
		return apperr.Ef(apperr.KindValidation, "cannot transition booking from %q to %q", b.Status, to)
	}

	return s.repo.UpdateStatus(ctx, organizationID, bookingID, b.Status, to)
}

func (s *service) ListByUser(ctx context.Context, organizationID, userID int64) ([]Booking, error) {
	return s.repo.ListByUser(ctx, organizationID, userID)
}
