package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/rentals/domain"
	"github.com/keyturn/keyturn/internal/rentals/domain/offer"
)

// GetLatestPaidStatusQuery contains the parameters for reading the
// verification status of a property's most recent paid offer.
type GetLatestPaidStatusQuery struct {
	PropertyID uuid.UUID
}

// GetLatestPaidStatusHandler handles the GetLatestPaidStatusQuery.
type GetLatestPaidStatusHandler struct {
	offerRepo         offer.Repository
	rentalRequestRepo domain.RentalRequestRepository
}

// NewGetLatestPaidStatusHandler creates a new GetLatestPaidStatusHandler.
func NewGetLatestPaidStatusHandler(
	offerRepo offer.Repository,
	rentalRequestRepo domain.RentalRequestRepository,
) *GetLatestPaidStatusHandler {
	return &GetLatestPaidStatusHandler{
		offerRepo:         offerRepo,
		rentalRequestRepo: rentalRequestRepo,
	}
}

// Handle executes the GetLatestPaidStatusQuery. A property with no paid
// offer yields a nil DTO, not an error.
func (h *GetLatestPaidStatusHandler) Handle(ctx context.Context, query GetLatestPaidStatusQuery) (*VerificationStatusDTO, error) {
	o, err := h.offerRepo.FindLatestPaidByProperty(ctx, query.PropertyID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, nil
	}
	return snapshot(ctx, h.rentalRequestRepo, o), nil
}
