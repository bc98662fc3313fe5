// Package domain holds the rental request and property entities that
// the cancellation flow mutates alongside the offer.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRentalRequestNotFound = errors.New("rental request not found")
	ErrPropertyNotFound      = errors.New("property not found")
)

// RentalRequestStatus is the lifecycle state of a rental request.
type RentalRequestStatus string

const (
	RentalRequestActive    RentalRequestStatus = "active"
	RentalRequestMatched   RentalRequestStatus = "matched"
	RentalRequestCancelled RentalRequestStatus = "cancelled"
)

// PoolStatus tracks the rental request's standing in the matching pool.
type PoolStatus string

const (
	PoolActive    PoolStatus = "active"
	PoolHidden    PoolStatus = "hidden"
	PoolCancelled PoolStatus = "cancelled"
)

// RentalRequest is a tenant group's request to rent. It is locked while
// a paid offer is in flight so the group cannot be matched twice.
type RentalRequest struct {
	ID            uuid.UUID
	TenantGroupID *uuid.UUID
	PropertyID    *uuid.UUID
	MoveInDate    *time.Time
	Status        RentalRequestStatus
	IsLocked      bool
	PoolStatus    PoolStatus
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Cancel releases the request back out of the pipeline: cancelled,
// unlocked, and withdrawn from the matching pool.
func (r *RentalRequest) Cancel() {
	r.Status = RentalRequestCancelled
	r.IsLocked = false
	r.PoolStatus = PoolCancelled
	r.UpdatedAt = time.Now().UTC()
}

// PropertyStatus is the lifecycle state of a property listing.
type PropertyStatus string

const (
	PropertyAvailable PropertyStatus = "available"
	PropertyReserved  PropertyStatus = "reserved"
	PropertyRented    PropertyStatus = "rented"
)

// Property is a rentable listing owned by a landlord organization.
type Property struct {
	ID           uuid.UUID
	LandlordID   *uuid.UUID
	Status       PropertyStatus
	Availability bool
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Release puts the property back on the market.
func (p *Property) Release() {
	p.Status = PropertyAvailable
	p.Availability = true
	p.UpdatedAt = time.Now().UTC()
}

// RentalRequestRepository defines the interface for rental request persistence.
type RentalRequestRepository interface {
	Save(ctx context.Context, r *RentalRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*RentalRequest, error)
}

// PropertyRepository defines the interface for property persistence.
type PropertyRepository interface {
	Save(ctx context.Context, p *Property) error
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
}
