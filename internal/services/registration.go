package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventreg/internal/domain"
)

type registrationService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	locker           domain.EventLocker
	logger           *slog.Logger
	contextTimeout   time.Duration
	now              func() time.Time
}

// NewRegistrationService creates a RegistrationService. A zero timeout leaves the
// caller's context deadline untouched.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	locker domain.EventLocker,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		locker:           locker,
		logger:           logger,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

// withTimeout bounds ctx by d. A non-positive d only adds cancellation.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (s *registrationService) Register(ctx context.Context, principal domain.Principal, eventID string) (*domain.Registration, error) {
	if principal.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, s.storageFailure(ctx, "get event", principal.UserID, eventID, err)
	}
	if event.SpotsLeft() <= 0 {
		return nil, domain.ErrEventFull
	}

	var reg *domain.Registration
	err = s.locker.WithEventLock(ctx, eventID, func(ctx context.Context, tx domain.RegistrationTx) error {
		if tx.Event().SpotsLeft() <= 0 {
			return domain.ErrEventFull
		}
		candidate := domain.NewRegistration(eventID, principal.UserID, s.now().UTC())
		created, err := tx.InsertIfAbsent(ctx, candidate)
		if err != nil {
			return err
		}
		if !created {
			return domain.ErrAlreadyRegistered
		}
		reg = candidate
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEventFull),
		errors.Is(err, domain.ErrAlreadyRegistered):
		return nil, err
	case errors.Is(err, domain.ErrNotFound):
		// deleted between the pre-check and the lock
		return nil, domain.ErrNotFound
	case errors.Is(err, domain.ErrUniqueViolation):
		s.logger.ErrorContext(ctx, "integrity error during registration",
			"user_id", principal.UserID, "event_id", eventID, "err", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageConflict, err)
	default:
		return nil, s.storageFailure(ctx, "register", principal.UserID, eventID, err)
	}

	s.logger.InfoContext(ctx, "user registered for event",
		"user_id", principal.UserID, "event_id", eventID, "registration_id", reg.ID)
	return reg, nil
}

func (s *registrationService) Cancel(ctx context.Context, principal domain.Principal, eventID string) error {
	if principal.UserID == "" {
		return domain.ErrUnauthenticated
	}
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.registrationRepo.Delete(ctx, eventID, principal.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotRegistered
		}
		return s.storageFailure(ctx, "cancel", principal.UserID, eventID, err)
	}
	s.logger.InfoContext(ctx, "user cancelled registration",
		"user_id", principal.UserID, "event_id", eventID)
	return nil
}

// SpotsLeft reads the event with its live registration count.
func (s *registrationService) SpotsLeft(ctx context.Context, eventID string) (int, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get event: %w", err)
	}
	return event.SpotsLeft(), nil
}

func (s *registrationService) ListMyRegistrations(ctx context.Context, principal domain.Principal) ([]*domain.RegistrationWithEvent, error) {
	if principal.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	regs, err := s.registrationRepo.ListByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	result := make([]*domain.RegistrationWithEvent, 0, len(regs))
	eventsByID := make(map[string]*domain.Event)
	for _, reg := range regs {
		ev, ok := eventsByID[reg.EventID]
		if !ok {
			ev, err = s.eventRepo.GetByID(ctx, reg.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("get event for registration: %w", err)
			}
			eventsByID[reg.EventID] = ev
		}
		result = append(result, &domain.RegistrationWithEvent{
			Registration: reg,
			Event:        ev,
		})
	}
	return result, nil
}

func (s *registrationService) ListRegistrations(ctx context.Context, principal domain.Principal, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	if !principal.IsStaff() {
		return nil, 0, domain.ErrForbidden
	}
	regs, total, err := s.registrationRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	return regs, total, nil
}

// storageFailure logs an unexpected error with its context and returns it wrapped in
// ErrStorageConflict.
func (s *registrationService) storageFailure(ctx context.Context, op, userID, eventID string, err error) error {
	s.logger.ErrorContext(ctx, "registration storage failure",
		"op", op, "user_id", userID, "event_id", eventID, "err", err)
	if errors.Is(err, domain.ErrStorageConflict) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageConflict, op, err)
}
