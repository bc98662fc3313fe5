package offer

import (
	"time"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/shared/domain"
)

const (
	AggregateType = "Offer"

	RoutingKeyMoveInVerified       = "rentals.offer.move_in_verified"
	RoutingKeyMoveInIssueReported  = "rentals.offer.move_in_issue_reported"
	RoutingKeyCancelled            = "rentals.offer.cancelled"
	RoutingKeyCancellationRejected = "rentals.offer.cancellation_rejected"
)

// MoveInVerified is emitted when a tenant confirms a successful move-in.
type MoveInVerified struct {
	domain.BaseEvent
	VerifiedAt time.Time `json:"verified_at"`
}

// NewMoveInVerified creates a MoveInVerified event.
func NewMoveInVerified(offerID uuid.UUID, verifiedAt time.Time) *MoveInVerified {
	return &MoveInVerified{
		BaseEvent:  domain.NewBaseEvent(offerID, AggregateType, RoutingKeyMoveInVerified),
		VerifiedAt: verifiedAt,
	}
}

// MoveInIssueReported is emitted when a tenant disputes a move-in.
type MoveInIssueReported struct {
	domain.BaseEvent
	Reason   string   `json:"reason"`
	Evidence []string `json:"evidence"`
}

// NewMoveInIssueReported creates a MoveInIssueReported event.
func NewMoveInIssueReported(offerID uuid.UUID, reason string, evidence []string) *MoveInIssueReported {
	return &MoveInIssueReported{
		BaseEvent: domain.NewBaseEvent(offerID, AggregateType, RoutingKeyMoveInIssueReported),
		Reason:    reason,
		Evidence:  evidence,
	}
}

// OfferCancelled is emitted when an administrator approves a cancellation.
type OfferCancelled struct {
	domain.BaseEvent
	Reason string `json:"reason"`
}

// NewOfferCancelled creates an OfferCancelled event.
func NewOfferCancelled(offerID uuid.UUID, reason string) *OfferCancelled {
	return &OfferCancelled{
		BaseEvent: domain.NewBaseEvent(offerID, AggregateType, RoutingKeyCancelled),
		Reason:    reason,
	}
}

// CancellationRejected is emitted when an administrator rejects a
// reported issue and the offer reverts to a successful move-in.
type CancellationRejected struct {
	domain.BaseEvent
}

// NewCancellationRejected creates a CancellationRejected event.
func NewCancellationRejected(offerID uuid.UUID) *CancellationRejected {
	return &CancellationRejected{
		BaseEvent: domain.NewBaseEvent(offerID, AggregateType, RoutingKeyCancellationRejected),
	}
}
