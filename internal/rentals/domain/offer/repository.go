package offer

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for offer persistence.
type Repository interface {
	Save(ctx context.Context, o *Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*Offer, error)

	// FindLatestPaidByProperty returns the most recently updated paid
	// offer for a property, or nil when no paid offer exists.
	FindLatestPaidByProperty(ctx context.Context, propertyID uuid.UUID) (*Offer, error)
}
