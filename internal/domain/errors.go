package domain

import (
	"errors"
	"fmt"
)

// InviteErrorKind categorizes redemption failures so callers can render
// a friendly message per kind.
type InviteErrorKind string

const (
	InviteErrorInvalidCode InviteErrorKind = "invalid_code"
	InviteErrorExpired     InviteErrorKind = "expired"
	InviteErrorAlreadyUsed InviteErrorKind = "already_used"
)

// InviteError is returned when invite redemption fails.
type InviteError struct {
	Kind InviteErrorKind
	Code string
}

func (e *InviteError) Error() string {
	switch e.Kind {
	case InviteErrorInvalidCode:
		return fmt.Sprintf("invite code %q is not recognized", e.Code)
	case InviteErrorExpired:
		return fmt.Sprintf("invite code %q has expired", e.Code)
	case InviteErrorAlreadyUsed:
		return fmt.Sprintf("invite code %q has already been used", e.Code)
	default:
		return fmt.Sprintf("invite code %q could not be redeemed", e.Code)
	}
}

// InviteErrorIs reports whether err is an InviteError of the given kind.
func InviteErrorIs(err error, kind InviteErrorKind) bool {
	var ie *InviteError
	if errors.As(err, &ie) {
		return ie.Kind == kind
	}
	return false
}

// ErrNotLinked is returned when a contributor operation runs before an
// invite has been redeemed on this device.
var ErrNotLinked = errors.New("no linked owner: redeem an invite code first")

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")
