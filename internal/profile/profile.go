package profile

import (
	"context"
	"errors"
)

// ErrNotFound means no business profile exists for the owner. A call
// cannot start without one.
var ErrNotFound = errors.New("business profile not found")

// BusinessProfile is the organization snapshot injected into every model
// prompt for a given owner. Immutable for the lifetime of a call.
type BusinessProfile struct {
	OwnerID     string
	CompanyName string
	Niche       string
	Description string
}

type Store interface {
	GetByOwner(ctx context.Context, ownerID string) (*BusinessProfile, error)
}
