package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/billing"
	contractsdomain "github.com/keyturn/keyturn/internal/contracts/domain"
	identitydomain "github.com/keyturn/keyturn/internal/identity/domain"
	messagingdomain "github.com/keyturn/keyturn/internal/messaging/domain"
	notifdomain "github.com/keyturn/keyturn/internal/notifications/domain"
	"github.com/keyturn/keyturn/internal/rentals/domain"
	"github.com/keyturn/keyturn/internal/rentals/domain/offer"
	sharedApplication "github.com/keyturn/keyturn/internal/shared/application"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/outbox"
	supportdomain "github.com/keyturn/keyturn/internal/support/domain"
)

// FileRemover deletes a stored file addressed by a relative path.
type FileRemover interface {
	Remove(relPath string) error
}

// ApproveCancellationCommand contains the data needed to approve a
// reported move-in issue and cancel the offer.
type ApproveCancellationCommand struct {
	OfferID uuid.UUID
	AdminID uuid.UUID
	Notes   string
}

// cancellationResult carries what the transactional phase produced and
// the post-commit phase consumes. The post-commit phase must never
// re-query state: everything it needs is captured here at commit time.
type cancellationResult struct {
	offer         *offer.Offer
	contractFiles []string
	tenant        *identitydomain.User
	landlord      *identitydomain.User
	notifications []*notifdomain.Notification
}

// ApproveCancellationHandler handles the ApproveCancellationCommand.
// Approval is a saga: one atomic transaction cancels the offer and
// transitions every related record, then ordered best-effort
// compensations clean up what cannot live inside a transaction.
type ApproveCancellationHandler struct {
	offerRepo         offer.Repository
	rentalRequestRepo domain.RentalRequestRepository
	propertyRepo      domain.PropertyRepository
	contractRepo      contractsdomain.Repository
	conversationRepo  messagingdomain.Repository
	ticketRepo        supportdomain.Repository
	notificationRepo  notifdomain.Repository
	memberships       identitydomain.MembershipRepository
	userRepo          identitydomain.UserRepository
	files             FileRemover
	refunds           billing.RefundService
	realtime          notifdomain.RealtimeGateway
	outboxRepo        outbox.Repository
	uow               sharedApplication.UnitOfWork
	logger            *slog.Logger
}

// NewApproveCancellationHandler creates a new ApproveCancellationHandler.
func NewApproveCancellationHandler(
	offerRepo offer.Repository,
	rentalRequestRepo domain.RentalRequestRepository,
	propertyRepo domain.PropertyRepository,
	contractRepo contractsdomain.Repository,
	conversationRepo messagingdomain.Repository,
	ticketRepo supportdomain.Repository,
	notificationRepo notifdomain.Repository,
	memberships identitydomain.MembershipRepository,
	userRepo identitydomain.UserRepository,
	files FileRemover,
	refunds billing.RefundService,
	realtime notifdomain.RealtimeGateway,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *ApproveCancellationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApproveCancellationHandler{
		offerRepo:         offerRepo,
		rentalRequestRepo: rentalRequestRepo,
		propertyRepo:      propertyRepo,
		contractRepo:      contractRepo,
		conversationRepo:  conversationRepo,
		ticketRepo:        ticketRepo,
		notificationRepo:  notificationRepo,
		memberships:       memberships,
		userRepo:          userRepo,
		files:             files,
		refunds:           refunds,
		realtime:          realtime,
		outboxRepo:        outboxRepo,
		uow:               uow,
		logger:            logger,
	}
}

// Handle executes the ApproveCancellationCommand. Once the transaction
// commits the operation reports success regardless of compensation
// outcomes: the authoritative state change has already happened.
func (h *ApproveCancellationHandler) Handle(ctx context.Context, cmd ApproveCancellationCommand) (*offer.Offer, error) {
	var result cancellationResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		r, err := h.cancel(txCtx, cmd)
		if err != nil {
			return err
		}
		result = *r
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.compensate(ctx, result)
	return result.offer, nil
}

// cancel is the transactional phase. All steps commit together or not
// at all.
func (h *ApproveCancellationHandler) cancel(ctx context.Context, cmd ApproveCancellationCommand) (*cancellationResult, error) {
	o, err := h.offerRepo.FindByID(ctx, cmd.OfferID)
	if err != nil {
		return nil, err
	}

	if err := o.Cancel(cmd.Notes); err != nil {
		return nil, err
	}
	if err := h.offerRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	result := &cancellationResult{offer: o}

	var rr *domain.RentalRequest
	if o.RentalRequestID() != nil {
		rr, err = h.rentalRequestRepo.FindByID(ctx, *o.RentalRequestID())
		if err != nil && !errors.Is(err, domain.ErrRentalRequestNotFound) {
			return nil, err
		}
	}
	if rr != nil {
		rr.Cancel()
		if err := h.rentalRequestRepo.Save(ctx, rr); err != nil {
			return nil, err
		}
	}

	if o.PropertyID() != nil {
		p, err := h.propertyRepo.FindByID(ctx, *o.PropertyID())
		if err != nil && !errors.Is(err, domain.ErrPropertyNotFound) {
			return nil, err
		}
		if p != nil {
			p.Release()
			if err := h.propertyRepo.Save(ctx, p); err != nil {
				return nil, err
			}
		}
	}

	if rr != nil {
		contracts, err := h.contractRepo.FindByRentalRequest(ctx, rr.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range contracts {
			result.contractFiles = append(result.contractFiles, c.FilePath)
		}
		if _, err := h.contractRepo.DeleteByRentalRequest(ctx, rr.ID); err != nil {
			return nil, err
		}
	}

	if _, err := h.conversationRepo.ArchiveByOffer(ctx, o.ID()); err != nil {
		return nil, err
	}

	result.tenant, result.landlord, err = h.resolveParties(ctx, o, rr)
	if err != nil {
		return nil, err
	}

	if result.tenant != nil {
		if _, err := h.ticketRepo.ResolveOpenByUserAndOffer(ctx, result.tenant.ID, o.ID()); err != nil {
			return nil, err
		}
	}

	result.notifications, err = h.createNotifications(ctx, o, result.tenant, result.landlord)
	if err != nil {
		return nil, err
	}

	if err := saveEvents(ctx, h.outboxRepo, o, cmd.AdminID); err != nil {
		return nil, err
	}

	return result, nil
}

// resolveParties looks up the primary tenant and the landlord. A missing
// member skips that party's follow-up steps; only real lookup failures
// abort the transaction.
func (h *ApproveCancellationHandler) resolveParties(
	ctx context.Context, o *offer.Offer, rr *domain.RentalRequest,
) (tenant, landlord *identitydomain.User, err error) {
	if rr != nil && rr.TenantGroupID != nil {
		tenant, err = h.memberships.PrimaryTenant(ctx, *rr.TenantGroupID)
		if err != nil && !errors.Is(err, identitydomain.ErrNoPrimaryTenant) {
			return nil, nil, err
		}
	}
	if o.OrganizationID() != nil {
		landlord, err = h.memberships.PrimaryOwner(ctx, *o.OrganizationID())
		if err != nil && !errors.Is(err, identitydomain.ErrNoPrimaryOwner) {
			return nil, nil, err
		}
	}
	return tenant, landlord, nil
}

func (h *ApproveCancellationHandler) createNotifications(
	ctx context.Context, o *offer.Offer, tenant, landlord *identitydomain.User,
) ([]*notifdomain.Notification, error) {
	var notifications []*notifdomain.Notification
	body := fmt.Sprintf("The offer %s was cancelled after a reported move-in issue.", o.ID())

	for _, u := range []*identitydomain.User{tenant, landlord} {
		if u == nil {
			continue
		}
		n := notifdomain.New(u.ID, notifdomain.TypeOfferCancelled, "Offer cancelled", body, o.ID())
		if err := h.notificationRepo.Save(ctx, n); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// compensate runs the post-commit phase in its required order: contract
// files first, then the refund, then the landlord's availability, then
// realtime events. Every failure is logged and swallowed.
func (h *ApproveCancellationHandler) compensate(ctx context.Context, result cancellationResult) {
	o := result.offer

	for _, path := range result.contractFiles {
		if err := h.files.Remove(path); err != nil {
			h.logger.Warn("failed to delete contract file",
				"offer_id", o.ID(), "path", path, "error", err)
		}
	}

	if err := h.refunds.RefundOfferPayments(ctx, o.ID()); err != nil {
		h.logger.Warn("failed to refund offer payments",
			"offer_id", o.ID(), "error", err)
	}

	if result.landlord != nil {
		if err := h.userRepo.SetAvailability(ctx, result.landlord.ID, true); err != nil {
			h.logger.Warn("failed to update landlord availability",
				"offer_id", o.ID(), "user_id", result.landlord.ID, "error", err)
		}
	}

	for _, n := range result.notifications {
		if err := h.realtime.EmitNotification(ctx, n.UserID, n); err != nil {
			h.logger.Warn("failed to emit notification event",
				"offer_id", o.ID(), "user_id", n.UserID, "error", err)
		}
		err := h.realtime.EmitMoveInVerificationUpdate(ctx, n.UserID, o.ID(), string(o.VerificationStatus()))
		if err != nil {
			h.logger.Warn("failed to emit verification update",
				"offer_id", o.ID(), "user_id", n.UserID, "error", err)
		}
	}
}
