// Package persistence implements conversation persistence on the shared
// database abstraction.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/messaging/domain"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/database"
)

// ConversationRepo persists conversations.
type ConversationRepo struct {
	conn database.Connection
}

// NewConversationRepo creates a new conversation repository.
func NewConversationRepo(conn database.Connection) *ConversationRepo {
	return &ConversationRepo{conn: conn}
}

// Save upserts a conversation.
func (r *ConversationRepo) Save(ctx context.Context, c *domain.Conversation) error {
	query := database.Rebind(r.conn.Driver(), `
		INSERT INTO conversations (id, offer_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at
	`)

	var offerID any
	if c.OfferID != nil {
		offerID = *c.OfferID
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query, c.ID, offerID, string(c.Status), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// FindByOffer returns all conversations keyed by the offer.
func (r *ConversationRepo) FindByOffer(ctx context.Context, offerID uuid.UUID) ([]*domain.Conversation, error) {
	query := database.Rebind(r.conn.Driver(), `
		SELECT id, offer_id, status, created_at, updated_at
		FROM conversations
		WHERE offer_id = ?
		ORDER BY created_at
	`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*domain.Conversation
	for rows.Next() {
		var (
			c   domain.Conversation
			oid uuid.NullUUID
			st  string
		)
		if err := rows.Scan(&c.ID, &oid, &st, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if oid.Valid {
			id := oid.UUID
			c.OfferID = &id
		}
		c.Status = domain.ConversationStatus(st)
		conversations = append(conversations, &c)
	}

	return conversations, rows.Err()
}

// ArchiveByOffer archives every conversation keyed by the offer.
func (r *ConversationRepo) ArchiveByOffer(ctx context.Context, offerID uuid.UUID) (int64, error) {
	query := database.Rebind(r.conn.Driver(), `
		UPDATE conversations
		SET status = ?, updated_at = ?
		WHERE offer_id = ? AND status != ?
	`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, query,
		string(domain.ConversationArchived),
		time.Now().UTC(),
		offerID,
		string(domain.ConversationArchived),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to archive conversations: %w", err)
	}
	return result.RowsAffected()
}
