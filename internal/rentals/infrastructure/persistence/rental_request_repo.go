package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/rentals/domain"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/database"
)

// RentalRequestRepo persists rental requests.
type RentalRequestRepo struct {
	conn database.Connection
}

// NewRentalRequestRepo creates a new rental request repository.
func NewRentalRequestRepo(conn database.Connection) *RentalRequestRepo {
	return &RentalRequestRepo{conn: conn}
}

// Save upserts the rental request.
func (r *RentalRequestRepo) Save(ctx context.Context, rr *domain.RentalRequest) error {
	query := database.Rebind(r.conn.Driver(), `
		INSERT INTO rental_requests (
			id, tenant_group_id, property_id, move_in_date, status,
			is_locked, pool_status, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			is_locked = excluded.is_locked,
			pool_status = excluded.pool_status,
			version = excluded.version,
			updated_at = excluded.updated_at
	`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query,
		rr.ID,
		uuidPtrValue(rr.TenantGroupID),
		uuidPtrValue(rr.PropertyID),
		timePtrValue(rr.MoveInDate),
		string(rr.Status),
		rr.IsLocked,
		string(rr.PoolStatus),
		rr.Version+1,
		rr.CreatedAt,
		rr.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save rental request: %w", err)
	}
	rr.Version++
	return nil
}

// FindByID loads a rental request by its ID.
func (r *RentalRequestRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.RentalRequest, error) {
	query := database.Rebind(r.conn.Driver(), `
		SELECT id, tenant_group_id, property_id, move_in_date, status,
		       is_locked, pool_status, version, created_at, updated_at
		FROM rental_requests
		WHERE id = ?
	`)

	var (
		rr            domain.RentalRequest
		tenantGroupID uuid.NullUUID
		propertyID    uuid.NullUUID
		moveInDate    sql.NullTime
		status        string
		poolStatus    string
	)

	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query, id).Scan(
		&rr.ID, &tenantGroupID, &propertyID, &moveInDate, &status,
		&rr.IsLocked, &poolStatus, &rr.Version, &rr.CreatedAt, &rr.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrRentalRequestNotFound
		}
		return nil, fmt.Errorf("failed to find rental request: %w", err)
	}

	rr.TenantGroupID = nullUUIDPtr(tenantGroupID)
	rr.PropertyID = nullUUIDPtr(propertyID)
	rr.MoveInDate = nullTimePtr(moveInDate)
	rr.Status = domain.RentalRequestStatus(status)
	rr.PoolStatus = domain.PoolStatus(poolStatus)
	return &rr, nil
}
