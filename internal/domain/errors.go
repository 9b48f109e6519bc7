package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services, repositories and delivery.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Registration outcomes. ErrEventFull and ErrAlreadyRegistered are decided by the
// application-level checks; ErrStorageConflict is what callers see when the storage
// layer fails underneath them and is safe to retry.
var (
	ErrEventFull         = errors.New("event is full")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = fmt.Errorf("not registered: %w", ErrNotFound)
	ErrStorageConflict   = errors.New("registration failed")
)

// ErrUniqueViolation is returned by repositories when a unique constraint fires.
var ErrUniqueViolation = errors.New("unique constraint violation")
