package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/identity/domain"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/database"
)

// MembershipRepo resolves organization and tenant group memberships.
type MembershipRepo struct {
	conn database.Connection
}

// NewMembershipRepo creates a new membership repository.
func NewMembershipRepo(conn database.Connection) *MembershipRepo {
	return &MembershipRepo{conn: conn}
}

// PrimaryOwner returns the user with the owner role in the organization.
func (r *MembershipRepo) PrimaryOwner(ctx context.Context, organizationID uuid.UUID) (*domain.User, error) {
	query := database.Rebind(r.conn.Driver(), `
		SELECT u.id, u.email, u.name, u.available, u.created_at, u.updated_at
		FROM organization_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = ? AND m.role = ?
		ORDER BY m.created_at
		LIMIT 1
	`)

	var u domain.User
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query, organizationID, string(domain.RoleOwner)).Scan(
		&u.ID, &u.Email, &u.Name, &u.Available, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrNoPrimaryOwner
		}
		return nil, fmt.Errorf("failed to find organization owner: %w", err)
	}
	return &u, nil
}

// PrimaryTenant returns the designated contact of the tenant group.
func (r *MembershipRepo) PrimaryTenant(ctx context.Context, tenantGroupID uuid.UUID) (*domain.User, error) {
	query := database.Rebind(r.conn.Driver(), `
		SELECT u.id, u.email, u.name, u.available, u.created_at, u.updated_at
		FROM tenant_group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.tenant_group_id = ? AND m.is_primary = ?
		ORDER BY m.created_at
		LIMIT 1
	`)

	var u domain.User
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query, tenantGroupID, true).Scan(
		&u.ID, &u.Email, &u.Name, &u.Available, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrNoPrimaryTenant
		}
		return nil, fmt.Errorf("failed to find primary tenant: %w", err)
	}
	return &u, nil
}
