package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventreg/internal/domain"
)

// Postgres error codes the repositories care about.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// mapError translates driver errors into domain errors. Unknown errors pass through.
func mapError(err error) error {
	var perr *pq.Error
	if !errors.As(err, &perr) {
		return err
	}
	switch perr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrUniqueViolation, perr.Constraint)
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return fmt.Errorf("%w: %s", domain.ErrStorageConflict, perr.Message)
	}
	return err
}
