package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	maxTitleLen    = 200
	maxLocationLen = 200
)

// Event represents a capacity-limited activity users register for.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Capacity    int       `json:"capacity"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`

	// RegistrationCount is the live number of registrations at read time.
	// Repositories fill it from a COUNT on every read; it is never persisted.
	RegistrationCount int `json:"registration_count"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, description, location string, start, end time.Time, capacity int, createdBy string) *Event {
	return &Event{
		Title:       strings.TrimSpace(title),
		Description: description,
		Location:    strings.TrimSpace(location),
		StartTime:   start,
		EndTime:     end,
		Capacity:    capacity,
		CreatedBy:   createdBy,
	}
}

// SpotsLeft returns the number of free spots given the live registration count.
func (e *Event) SpotsLeft() int {
	return SpotsLeft(e.Capacity, e.RegistrationCount)
}

// Validate checks the event invariants. The returned error wraps ErrInvalidInput.
func (e *Event) Validate() error {
	switch {
	case e.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case len(e.Title) > maxTitleLen:
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, maxTitleLen)
	case len(e.Location) > maxLocationLen:
		return fmt.Errorf("%w: location must be at most %d characters", ErrInvalidInput, maxLocationLen)
	case e.Capacity < 0:
		return fmt.Errorf("%w: capacity must be non-negative", ErrInvalidInput)
	case e.EndTime.Before(e.StartTime):
		return fmt.Errorf("%w: end_time must not be before start_time", ErrInvalidInput)
	}
	return nil
}

// SpotsLeft is max(0, capacity - taken). It is never negative.
func SpotsLeft(capacity, taken int) int {
	if remaining := capacity - taken; remaining > 0 {
		return remaining
	}
	return 0
}

// EventRepository defines the interface for event storage.
// Every read returns the event with RegistrationCount loaded from live data.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	CountRegistrations(ctx context.Context, eventID string) (int, error)
}

// EventService defines organizer- and public-facing event operations.
type EventService interface {
	CreateEvent(ctx context.Context, principal Principal, event *Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
}
