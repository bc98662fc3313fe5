package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	identitydomain "github.com/keyturn/keyturn/internal/identity/domain"
	notifdomain "github.com/keyturn/keyturn/internal/notifications/domain"
	"github.com/keyturn/keyturn/internal/rentals/domain"
	"github.com/keyturn/keyturn/internal/rentals/domain/offer"
	sharedApplication "github.com/keyturn/keyturn/internal/shared/application"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/outbox"
)

// RejectCancellationCommand contains the data needed to reject a
// reported move-in issue.
type RejectCancellationCommand struct {
	OfferID uuid.UUID
	AdminID uuid.UUID
	Notes   string
}

// RejectCancellationHandler handles the RejectCancellationCommand.
// Rejection is a single-entity update: the offer reverts to a successful
// move-in and nothing else is touched.
type RejectCancellationHandler struct {
	offerRepo         offer.Repository
	rentalRequestRepo domain.RentalRequestRepository
	memberships       identitydomain.MembershipRepository
	notificationRepo  notifdomain.Repository
	realtime          notifdomain.RealtimeGateway
	outboxRepo        outbox.Repository
	uow               sharedApplication.UnitOfWork
	logger            *slog.Logger
}

// NewRejectCancellationHandler creates a new RejectCancellationHandler.
func NewRejectCancellationHandler(
	offerRepo offer.Repository,
	rentalRequestRepo domain.RentalRequestRepository,
	memberships identitydomain.MembershipRepository,
	notificationRepo notifdomain.Repository,
	realtime notifdomain.RealtimeGateway,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *RejectCancellationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RejectCancellationHandler{
		offerRepo:         offerRepo,
		rentalRequestRepo: rentalRequestRepo,
		memberships:       memberships,
		notificationRepo:  notificationRepo,
		realtime:          realtime,
		outboxRepo:        outboxRepo,
		uow:               uow,
		logger:            logger,
	}
}

// Handle executes the RejectCancellationCommand.
func (h *RejectCancellationHandler) Handle(ctx context.Context, cmd RejectCancellationCommand) (*offer.Offer, error) {
	var o *offer.Offer

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		o, err = h.offerRepo.FindByID(txCtx, cmd.OfferID)
		if err != nil {
			return err
		}

		if err := o.RejectCancellation(cmd.Notes); err != nil {
			return err
		}

		if err := h.offerRepo.Save(txCtx, o); err != nil {
			return err
		}

		return saveEvents(txCtx, h.outboxRepo, o, cmd.AdminID)
	})
	if err != nil {
		return nil, err
	}

	h.notifyParties(ctx, o)
	return o, nil
}

// notifyParties informs the tenant and the landlord that the reported
// issue was rejected. Best effort: failures are logged and swallowed.
func (h *RejectCancellationHandler) notifyParties(ctx context.Context, o *offer.Offer) {
	body := fmt.Sprintf("The reported move-in issue for offer %s was reviewed and rejected; the move-in stands as successful.", o.ID())

	var recipients []*identitydomain.User

	if o.RentalRequestID() != nil {
		rr, err := h.rentalRequestRepo.FindByID(ctx, *o.RentalRequestID())
		if err == nil && rr.TenantGroupID != nil {
			tenant, err := h.memberships.PrimaryTenant(ctx, *rr.TenantGroupID)
			if err == nil {
				recipients = append(recipients, tenant)
			} else if !errors.Is(err, identitydomain.ErrNoPrimaryTenant) {
				h.logger.Warn("failed to resolve tenant for rejection notification",
					"offer_id", o.ID(), "error", err)
			}
		} else if err != nil && !errors.Is(err, domain.ErrRentalRequestNotFound) {
			h.logger.Warn("failed to load rental request for rejection notification",
				"offer_id", o.ID(), "error", err)
		}
	}

	if o.OrganizationID() != nil {
		landlord, err := h.memberships.PrimaryOwner(ctx, *o.OrganizationID())
		if err == nil {
			recipients = append(recipients, landlord)
		} else if !errors.Is(err, identitydomain.ErrNoPrimaryOwner) {
			h.logger.Warn("failed to resolve landlord for rejection notification",
				"offer_id", o.ID(), "error", err)
		}
	}

	for _, u := range recipients {
		n := notifdomain.New(u.ID, notifdomain.TypeCancellationRejected, "Cancellation rejected", body, o.ID())
		if err := h.notificationRepo.Save(ctx, n); err != nil {
			h.logger.Warn("failed to create rejection notification",
				"offer_id", o.ID(), "user_id", u.ID, "error", err)
			continue
		}
		if err := h.realtime.EmitNotification(ctx, u.ID, n); err != nil {
			h.logger.Warn("failed to emit notification event",
				"offer_id", o.ID(), "user_id", u.ID, "error", err)
		}
		err := h.realtime.EmitMoveInVerificationUpdate(ctx, u.ID, o.ID(), string(o.VerificationStatus()))
		if err != nil {
			h.logger.Warn("failed to emit verification update",
				"offer_id", o.ID(), "user_id", u.ID, "error", err)
		}
	}
}
