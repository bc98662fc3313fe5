// Package billing integrates with the external payment service. The
// only operation the marketplace needs from it is refunding every
// payment recorded against an offer.
package billing

import (
	"context"

	"github.com/google/uuid"
)

// RefundService triggers refunds on the payment service.
type RefundService interface {
	// RefundOfferPayments refunds all captured payments for the offer.
	// Refunding an offer with no payments is a no-op and succeeds.
	RefundOfferPayments(ctx context.Context, offerID uuid.UUID) error
}

// NoopRefundService satisfies RefundService without calling anything.
// Used in development when no payment service is configured.
type NoopRefundService struct{}

func (NoopRefundService) RefundOfferPayments(ctx context.Context, offerID uuid.UUID) error {
	return nil
}
