// Package persistence implements notification persistence on the shared
// database abstraction.
package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/notifications/domain"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/database"
)

// NotificationRepo persists notifications.
type NotificationRepo struct {
	conn database.Connection
}

// NewNotificationRepo creates a new notification repository.
func NewNotificationRepo(conn database.Connection) *NotificationRepo {
	return &NotificationRepo{conn: conn}
}

// Save stores a notification.
func (r *NotificationRepo) Save(ctx context.Context, n *domain.Notification) error {
	query := database.Rebind(r.conn.Driver(), `
		INSERT INTO notifications (id, user_id, type, title, body, reference_id, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)

	var referenceID any
	if n.ReferenceID != nil {
		referenceID = *n.ReferenceID
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query,
		n.ID, n.UserID, string(n.Type), n.Title, n.Body, referenceID, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// FindByUser returns the user's most recent notifications.
func (r *NotificationRepo) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	query := database.Rebind(r.conn.Driver(), `
		SELECT id, user_id, type, title, body, reference_id, read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var (
			n           domain.Notification
			typ         string
			referenceID uuid.NullUUID
		)
		err := rows.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Body, &referenceID, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		n.Type = domain.Type(typ)
		if referenceID.Valid {
			id := referenceID.UUID
			n.ReferenceID = &id
		}
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}
