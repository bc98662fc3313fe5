// Package persistence implements contract persistence on the shared
// database abstraction.
package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/contracts/domain"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/database"
)

// ContractRepo persists contracts.
type ContractRepo struct {
	conn database.Connection
}

// NewContractRepo creates a new contract repository.
func NewContractRepo(conn database.Connection) *ContractRepo {
	return &ContractRepo{conn: conn}
}

// Save stores a contract record.
func (r *ContractRepo) Save(ctx context.Context, c *domain.Contract) error {
	query := database.Rebind(r.conn.Driver(), `
		INSERT INTO contracts (id, rental_request_id, offer_id, file_path, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)

	var offerID any
	if c.OfferID != nil {
		offerID = *c.OfferID
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query, c.ID, c.RentalRequestID, offerID, c.FilePath, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save contract: %w", err)
	}
	return nil
}

// FindByRentalRequest returns all contracts for a rental request.
func (r *ContractRepo) FindByRentalRequest(ctx context.Context, rentalRequestID uuid.UUID) ([]*domain.Contract, error) {
	query := database.Rebind(r.conn.Driver(), `
		SELECT id, rental_request_id, offer_id, file_path, created_at
		FROM contracts
		WHERE rental_request_id = ?
		ORDER BY created_at
	`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, rentalRequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*domain.Contract
	for rows.Next() {
		var (
			c       domain.Contract
			offerID uuid.NullUUID
		)
		if err := rows.Scan(&c.ID, &c.RentalRequestID, &offerID, &c.FilePath, &c.CreatedAt); err != nil {
			return nil, err
		}
		if offerID.Valid {
			id := offerID.UUID
			c.OfferID = &id
		}
		contracts = append(contracts, &c)
	}

	return contracts, rows.Err()
}

// DeleteByRentalRequest hard-deletes all contracts for a rental request.
func (r *ContractRepo) DeleteByRentalRequest(ctx context.Context, rentalRequestID uuid.UUID) (int64, error) {
	query := database.Rebind(r.conn.Driver(),
		`DELETE FROM contracts WHERE rental_request_id = ?`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, query, rentalRequestID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete contracts: %w", err)
	}
	return result.RowsAffected()
}
