package service

import (
	"errors"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// isCallerError reports errors caused by the request rather than the system.
func isCallerError(err error) bool {
	return errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrQuotaExceeded)
}
