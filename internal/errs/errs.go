package errs

import "errors"

// Sentinel errors for the service layer. Handlers map these onto HTTP status
// codes in one place; services wrap them with context via fmt.Errorf and %w.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidReferral   = errors.New("invalid referral")
	ErrDealAlreadyExists = errors.New("lead already has an active deal")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation failed")
)
