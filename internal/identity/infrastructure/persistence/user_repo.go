// Package persistence implements identity persistence on the shared
// database abstraction.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/identity/domain"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/database"
)

// UserRepo persists users.
type UserRepo struct {
	conn database.Connection
}

// NewUserRepo creates a new user repository.
func NewUserRepo(conn database.Connection) *UserRepo {
	return &UserRepo{conn: conn}
}

// FindByID loads a user by ID.
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := database.Rebind(r.conn.Driver(), `
		SELECT id, email, name, available, created_at, updated_at
		FROM users
		WHERE id = ?
	`)

	var u domain.User
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.Name, &u.Available, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

// SetAvailability persists the landlord's aggregate availability flag.
func (r *UserRepo) SetAvailability(ctx context.Context, userID uuid.UUID, available bool) error {
	query := database.Rebind(r.conn.Driver(),
		`UPDATE users SET available = ?, updated_at = ? WHERE id = ?`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, query, available, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update user availability: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
