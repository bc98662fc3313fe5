// Package domain holds the contract records generated for a rental
// request. Contracts are hard-deleted on cancellation, not flagged.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Contract is a generated rental contract backed by a PDF on disk.
type Contract struct {
	ID              uuid.UUID
	RentalRequestID uuid.UUID
	OfferID         *uuid.UUID
	// FilePath is relative to the process-wide upload root.
	FilePath  string
	CreatedAt time.Time
}

// Repository defines the interface for contract persistence.
type Repository interface {
	Save(ctx context.Context, c *Contract) error

	// FindByRentalRequest returns all contracts for a rental request.
	FindByRentalRequest(ctx context.Context, rentalRequestID uuid.UUID) ([]*Contract, error)

	// DeleteByRentalRequest hard-deletes all contracts for a rental
	// request and returns how many rows were removed.
	DeleteByRentalRequest(ctx context.Context, rentalRequestID uuid.UUID) (int64, error)
}
