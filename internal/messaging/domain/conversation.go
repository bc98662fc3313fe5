// Package domain holds the conversation threads attached to an offer.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

const (
	ConversationActive   ConversationStatus = "active"
	ConversationArchived ConversationStatus = "archived"
)

// Conversation is a message thread between the tenant group and the
// landlord, keyed by the offer it concerns.
type Conversation struct {
	ID        uuid.UUID
	OfferID   *uuid.UUID
	Status    ConversationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines the interface for conversation persistence.
type Repository interface {
	Save(ctx context.Context, c *Conversation) error
	FindByOffer(ctx context.Context, offerID uuid.UUID) ([]*Conversation, error)

	// ArchiveByOffer archives every conversation keyed by the offer
	// and returns how many rows changed.
	ArchiveByOffer(ctx context.Context, offerID uuid.UUID) (int64, error)
}
