package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/rentals/domain"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/database"
)

// PropertyRepo persists properties.
type PropertyRepo struct {
	conn database.Connection
}

// NewPropertyRepo creates a new property repository.
func NewPropertyRepo(conn database.Connection) *PropertyRepo {
	return &PropertyRepo{conn: conn}
}

// Save upserts the property.
func (r *PropertyRepo) Save(ctx context.Context, p *domain.Property) error {
	query := database.Rebind(r.conn.Driver(), `
		INSERT INTO properties (
			id, landlord_id, status, availability, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			availability = excluded.availability,
			version = excluded.version,
			updated_at = excluded.updated_at
	`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query,
		p.ID,
		uuidPtrValue(p.LandlordID),
		string(p.Status),
		p.Availability,
		p.Version+1,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save property: %w", err)
	}
	p.Version++
	return nil
}

// FindByID loads a property by its ID.
func (r *PropertyRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := database.Rebind(r.conn.Driver(), `
		SELECT id, landlord_id, status, availability, version, created_at, updated_at
		FROM properties
		WHERE id = ?
	`)

	var (
		p          domain.Property
		landlordID uuid.NullUUID
		status     string
	)

	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query, id).Scan(
		&p.ID, &landlordID, &status, &p.Availability,
		&p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}

	p.LandlordID = nullUUIDPtr(landlordID)
	p.Status = domain.PropertyStatus(status)
	return &p, nil
}
