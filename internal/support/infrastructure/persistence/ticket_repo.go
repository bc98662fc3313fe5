// Package persistence implements support ticket persistence on the
// shared database abstraction.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/shared/infrastructure/database"
	"github.com/keyturn/keyturn/internal/support/domain"
)

// TicketRepo persists support tickets.
type TicketRepo struct {
	conn database.Connection
}

// NewTicketRepo creates a new ticket repository.
func NewTicketRepo(conn database.Connection) *TicketRepo {
	return &TicketRepo{conn: conn}
}

// Save upserts a ticket.
func (r *TicketRepo) Save(ctx context.Context, t *domain.Ticket) error {
	query := database.Rebind(r.conn.Driver(), `
		INSERT INTO support_tickets (
			id, user_id, title, description, category, priority, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			description = excluded.description,
			priority = excluded.priority,
			status = excluded.status,
			updated_at = excluded.updated_at
	`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query,
		t.ID, t.UserID, t.Title, t.Description,
		string(t.Category), string(t.Priority), string(t.Status),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save ticket: %w", err)
	}
	return nil
}

// FindByID loads a ticket by its ID.
func (r *TicketRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	query := database.Rebind(r.conn.Driver(), `
		SELECT id, user_id, title, description, category, priority, status,
		       created_at, updated_at
		FROM support_tickets
		WHERE id = ?
	`)

	var (
		t                 domain.Ticket
		cat, prio, status string
	)

	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &cat, &prio, &status,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, fmt.Errorf("ticket %s not found", id)
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}

	t.Category = domain.Category(cat)
	t.Priority = domain.Priority(prio)
	t.Status = domain.TicketStatus(status)
	return &t, nil
}

// ResolveOpenByUserAndOffer resolves any open ticket belonging to the
// user whose title references the offer.
func (r *TicketRepo) ResolveOpenByUserAndOffer(ctx context.Context, userID, offerID uuid.UUID) (int64, error) {
	query := database.Rebind(r.conn.Driver(), `
		UPDATE support_tickets
		SET status = ?, updated_at = ?
		WHERE user_id = ? AND title = ? AND status = ?
	`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, query,
		string(domain.TicketResolved),
		time.Now().UTC(),
		userID,
		domain.MoveInIssueTitle(offerID),
		string(domain.TicketOpen),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve tickets: %w", err)
	}
	return result.RowsAffected()
}
