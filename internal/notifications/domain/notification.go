// Package domain holds in-app notifications. The rows are the durable
// source of truth; realtime delivery on top of them is best effort.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type classifies a notification.
type Type string

const (
	TypeMoveInVerified       Type = "move_in_verified"
	TypeMoveInIssueReported  Type = "move_in_issue_reported"
	TypeOfferCancelled       Type = "offer_cancelled"
	TypeCancellationRejected Type = "cancellation_rejected"
)

// Notification is an in-app notification addressed to a single user.
type Notification struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        Type
	Title       string
	Body        string
	ReferenceID *uuid.UUID
	Read        bool
	CreatedAt   time.Time
}

// New creates a notification referencing the given aggregate.
func New(userID uuid.UUID, typ Type, title, body string, referenceID uuid.UUID) *Notification {
	return &Notification{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        typ,
		Title:       title,
		Body:        body,
		ReferenceID: &referenceID,
		CreatedAt:   time.Now().UTC(),
	}
}

// Repository defines the interface for notification persistence.
type Repository interface {
	Save(ctx context.Context, n *Notification) error
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Notification, error)
}

// RealtimeGateway pushes live events to connected clients. Delivery is
// at-most-once; a dropped event is acceptable because the notification
// rows remain the durable record.
type RealtimeGateway interface {
	EmitNotification(ctx context.Context, userID uuid.UUID, n *Notification) error
	EmitMoveInVerificationUpdate(ctx context.Context, userID, offerID uuid.UUID, status string) error
}
