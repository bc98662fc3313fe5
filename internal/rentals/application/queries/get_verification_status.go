// Package queries contains the read-side operations of the move-in
// verification flow.
package queries

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/rentals/domain"
	"github.com/keyturn/keyturn/internal/rentals/domain/offer"
)

// VerificationStatusDTO is the verification snapshot returned to callers.
type VerificationStatusDTO struct {
	OfferID            uuid.UUID  `json:"offerId"`
	Status             string     `json:"status"`
	Deadline           time.Time  `json:"deadline"`
	VerifiedAt         *time.Time `json:"verifiedAt"`
	CancellationReason string     `json:"cancellationReason"`
	Evidence           []string   `json:"evidence"`
}

// GetVerificationStatusQuery contains the parameters for reading an
// offer's verification status.
type GetVerificationStatusQuery struct {
	OfferID uuid.UUID
}

// GetVerificationStatusHandler handles the GetVerificationStatusQuery.
type GetVerificationStatusHandler struct {
	offerRepo         offer.Repository
	rentalRequestRepo domain.RentalRequestRepository
}

// NewGetVerificationStatusHandler creates a new GetVerificationStatusHandler.
func NewGetVerificationStatusHandler(
	offerRepo offer.Repository,
	rentalRequestRepo domain.RentalRequestRepository,
) *GetVerificationStatusHandler {
	return &GetVerificationStatusHandler{
		offerRepo:         offerRepo,
		rentalRequestRepo: rentalRequestRepo,
	}
}

// Handle executes the GetVerificationStatusQuery.
func (h *GetVerificationStatusHandler) Handle(ctx context.Context, query GetVerificationStatusQuery) (*VerificationStatusDTO, error) {
	o, err := h.offerRepo.FindByID(ctx, query.OfferID)
	if err != nil {
		return nil, err
	}
	return snapshot(ctx, h.rentalRequestRepo, o), nil
}

// snapshot builds the DTO, preferring the stored deadline and falling
// back to one derived from the rental request's move-in date.
func snapshot(ctx context.Context, rentalRequests domain.RentalRequestRepository, o *offer.Offer) *VerificationStatusDTO {
	var moveInDate *time.Time
	if o.VerificationDeadline() == nil && o.RentalRequestID() != nil {
		rr, err := rentalRequests.FindByID(ctx, *o.RentalRequestID())
		if err == nil {
			moveInDate = rr.MoveInDate
		} else if !errors.Is(err, domain.ErrRentalRequestNotFound) {
			moveInDate = nil
		}
	}

	evidence := o.CancellationEvidence()
	if evidence == nil {
		evidence = []string{}
	}

	return &VerificationStatusDTO{
		OfferID:            o.ID(),
		Status:             string(o.VerificationStatus()),
		Deadline:           o.EffectiveDeadline(moveInDate),
		VerifiedAt:         o.VerificationDate(),
		CancellationReason: o.CancellationReason(),
		Evidence:           evidence,
	}
}
