// Package commands contains the write-side operations of the move-in
// verification flow. State changes commit inside a unit of work together
// with their outbox events; notification and realtime side effects run
// after commit and are best effort.
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

// VerifyMoveInCommand contains the data needed to confirm a move-in.
type VerifyMoveInCommand struct {
	OfferID uuid.UUID
	UserID  uuid.UUID
}

// VerifyMoveInHandler handles the VerifyMoveInCommand.
type VerifyMoveInHandler struct {
	offerRepo         offer.Repository
	rentalRequestRepo domain.RentalRequestRepository
	memberships       identitydomain.MembershipRepository
	notificationRepo  notifdomain.Repository
	realtime          notifdomain.RealtimeGateway
	outboxRepo        outbox.Repository
	uow               sharedApplication.UnitOfWork
	logger            *slog.Logger
}

// NewVerifyMoveInHandler creates a new VerifyMoveInHandler.
func NewVerifyMoveInHandler(
	offerRepo offer.Repository,
	rentalRequestRepo domain.RentalRequestRepository,
	memberships identitydomain.MembershipRepository,
	notificationRepo notifdomain.Repository,
	realtime notifdomain.RealtimeGateway,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *VerifyMoveInHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VerifyMoveInHandler{
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

// Handle executes the VerifyMoveInCommand.
func (h *VerifyMoveInHandler) Handle(ctx context.Context, cmd VerifyMoveInCommand) (*offer.Offer, error) {
	var o *offer.Offer

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		o, err = h.offerRepo.FindByID(txCtx, cmd.OfferID)
		if err != nil {
			return err
		}

		if err := requireTenant(txCtx, h.rentalRequestRepo, h.memberships, o, cmd.UserID); err != nil {
			return err
		}

		if err := o.VerifyMoveIn(); err != nil {
			return err
		}

		if err := h.offerRepo.Save(txCtx, o); err != nil {
			return err
		}

		return saveEvents(txCtx, h.outboxRepo, o, cmd.UserID)
	})
	if err != nil {
		return nil, err
	}

	h.notifyLandlord(ctx, o)
	return o, nil
}

// notifyLandlord creates the landlord's notification and emits the
// realtime update. Failures are logged, never surfaced: the state
// transition has already committed.
func (h *VerifyMoveInHandler) notifyLandlord(ctx context.Context, o *offer.Offer) {
	if o.OrganizationID() == nil {
		return
	}

	landlord, err := h.memberships.PrimaryOwner(ctx, *o.OrganizationID())
	if err != nil {
		if !errors.Is(err, identitydomain.ErrNoPrimaryOwner) {
			h.logger.Warn("failed to resolve landlord for move-in notification",
				"offer_id", o.ID(), "error", err)
		}
		return
	}

	n := notifdomain.New(
		landlord.ID,
		notifdomain.TypeMoveInVerified,
		"Move-in verified",
		fmt.Sprintf("The tenant confirmed a successful move-in for offer %s.", o.ID()),
		o.ID(),
	)
	if err := h.notificationRepo.Save(ctx, n); err != nil {
		h.logger.Warn("failed to create move-in notification",
			"offer_id", o.ID(), "user_id", landlord.ID, "error", err)
	} else if err := h.realtime.EmitNotification(ctx, landlord.ID, n); err != nil {
		h.logger.Warn("failed to emit notification event",
			"offer_id", o.ID(), "user_id", landlord.ID, "error", err)
	}

	err = h.realtime.EmitMoveInVerificationUpdate(ctx, landlord.ID, o.ID(), string(o.VerificationStatus()))
	if err != nil {
		h.logger.Warn("failed to emit verification update",
			"offer_id", o.ID(), "user_id", landlord.ID, "error", err)
	}
}

// requireTenant checks that the caller is the primary tenant of the
// offer's rental request. When the rental request or tenant group cannot
// be resolved the check is skipped rather than failed.
func requireTenant(
	ctx context.Context,
	rentalRequests domain.RentalRequestRepository,
	memberships identitydomain.MembershipRepository,
	o *offer.Offer,
	userID uuid.UUID,
) error {
	if o.RentalRequestID() == nil {
		return nil
	}
	rr, err := rentalRequests.FindByID(ctx, *o.RentalRequestID())
	if err != nil {
		if errors.Is(err, domain.ErrRentalRequestNotFound) {
			return nil
		}
		return err
	}
	if rr.TenantGroupID == nil {
		return nil
	}
	tenant, err := memberships.PrimaryTenant(ctx, *rr.TenantGroupID)
	if err != nil {
		if errors.Is(err, identitydomain.ErrNoPrimaryTenant) {
			return nil
		}
		return err
	}
	if tenant.ID != userID {
		return offer.ErrNotOfferTenant
	}
	return nil
}

// saveEvents stamps the aggregate's uncommitted events with metadata and
// stores them in the outbox inside the surrounding transaction.
func saveEvents(ctx context.Context, outboxRepo outbox.Repository, o *offer.Offer, userID uuid.UUID) error {
	events := o.DomainEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(userID))

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return outboxRepo.SaveBatch(ctx, msgs)
}
