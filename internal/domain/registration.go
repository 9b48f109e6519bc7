package domain

import (
	"context"
	"time"
)

// Registration is a confirmed seat linking one user to one event.
// swagger:model Registration
type Registration struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewRegistration creates a new Registration. ID is typically set by the repository on create.
func NewRegistration(eventID, userID string, registeredAt time.Time) *Registration {
	return &Registration{
		EventID:      eventID,
		UserID:       userID,
		RegisteredAt: registeredAt,
	}
}

// RegistrationWithEvent bundles a registration with its related event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// RegistrationRepository defines storage operations for registrations outside the
// locked registration path.
type RegistrationRepository interface {
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	// Delete removes the registration for the pair, or returns ErrNotFound.
	Delete(ctx context.Context, eventID, userID string) error
	ListByUserID(ctx context.Context, userID string) ([]*Registration, error)
	List(ctx context.Context, params PaginationParams) ([]*Registration, int, error)
}

// RegistrationTx is the view of one event's registration set handed to the function
// run by EventLocker.WithEventLock.
type RegistrationTx interface {
	// Event returns the event as re-read under the lock, with a fresh registration count.
	Event() *Event
	// InsertIfAbsent stores reg unless a registration for (reg.UserID, reg.EventID)
	// exists. It reports whether a row was inserted and sets reg.ID when it was.
	InsertIfAbsent(ctx context.Context, reg *Registration) (bool, error)
}

// EventLocker gives scoped exclusive access to one event's registration set.
// The lock is held for the duration of fn and released on every exit path. Writes made
// through the RegistrationTx are committed only when fn returns nil. If the event does
// not exist ErrNotFound is returned and fn is not called.
type EventLocker interface {
	WithEventLock(ctx context.Context, eventID string, fn func(ctx context.Context, tx RegistrationTx) error) error
}

// RegistrationService defines attendee-facing registration operations.
type RegistrationService interface {
	Register(ctx context.Context, principal Principal, eventID string) (*Registration, error)
	Cancel(ctx context.Context, principal Principal, eventID string) error
	SpotsLeft(ctx context.Context, eventID string) (int, error)
	ListMyRegistrations(ctx context.Context, principal Principal) ([]*RegistrationWithEvent, error)
	ListRegistrations(ctx context.Context, principal Principal, params PaginationParams) ([]*Registration, int, error)
}
