// Package domain holds users and the two membership lookups the
// verification flow depends on: the owner of a landlord organization
// and the primary member of a tenant group.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrNoPrimaryOwner  = errors.New("organization has no owner")
	ErrNoPrimaryTenant = errors.New("tenant group has no primary member")
)

// Role is a member's role within a landlord organization.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAgent  Role = "agent"
	RoleViewer Role = "viewer"
)

// User is an account on the platform.
type User struct {
	ID    uuid.UUID
	Email string
	Name  string
	// Available is the landlord's denormalized aggregate availability
	// flag consumed by search and matching.
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// SetAvailability persists the landlord's aggregate availability flag.
	SetAvailability(ctx context.Context, userID uuid.UUID, available bool) error
}

// MembershipRepository resolves the people behind organizations and
// tenant groups.
type MembershipRepository interface {
	// PrimaryOwner returns the user with the owner role in the
	// organization. ErrNoPrimaryOwner when none exists.
	PrimaryOwner(ctx context.Context, organizationID uuid.UUID) (*User, error)

	// PrimaryTenant returns the designated contact of the tenant
	// group. ErrNoPrimaryTenant when none exists.
	PrimaryTenant(ctx context.Context, tenantGroupID uuid.UUID) (*User, error)
}
