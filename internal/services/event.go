package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventreg/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
	now            func() time.Time
}

func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// CreateEvent stores a new event owned by the principal. Only staff may create events.
func (s *eventService) CreateEvent(ctx context.Context, principal domain.Principal, event *domain.Event) error {
	if principal.UserID == "" {
		return domain.ErrUnauthenticated
	}
	if !principal.IsStaff() {
		return domain.ErrForbidden
	}
	if err := event.Validate(); err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	event.CreatedBy = principal.UserID
	event.CreatedAt = s.now().UTC()
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}
