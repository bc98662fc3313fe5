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
	supportdomain "github.com/keyturn/keyturn/internal/support/domain"
)

// ReportIssueCommand contains the data needed to report a move-in issue.
type ReportIssueCommand struct {
	OfferID  uuid.UUID
	UserID   uuid.UUID
	Reason   string
	Notes    string
	Evidence []string
}

// ReportIssueHandler handles the ReportIssueCommand.
type ReportIssueHandler struct {
	offerRepo         offer.Repository
	rentalRequestRepo domain.RentalRequestRepository
	memberships       identitydomain.MembershipRepository
	notificationRepo  notifdomain.Repository
	ticketRepo        supportdomain.Repository
	realtime          notifdomain.RealtimeGateway
	outboxRepo        outbox.Repository
	uow               sharedApplication.UnitOfWork
	logger            *slog.Logger
}

// NewReportIssueHandler creates a new ReportIssueHandler.
func NewReportIssueHandler(
	offerRepo offer.Repository,
	rentalRequestRepo domain.RentalRequestRepository,
	memberships identitydomain.MembershipRepository,
	notificationRepo notifdomain.Repository,
	ticketRepo supportdomain.Repository,
	realtime notifdomain.RealtimeGateway,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *ReportIssueHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportIssueHandler{
		offerRepo:         offerRepo,
		rentalRequestRepo: rentalRequestRepo,
		memberships:       memberships,
		notificationRepo:  notificationRepo,
		ticketRepo:        ticketRepo,
		realtime:          realtime,
		outboxRepo:        outboxRepo,
		uow:               uow,
		logger:            logger,
	}
}

// Handle executes the ReportIssueCommand.
func (h *ReportIssueHandler) Handle(ctx context.Context, cmd ReportIssueCommand) (*offer.Offer, error) {
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

		if err := o.ReportIssue(cmd.Reason, cmd.Notes, cmd.Evidence); err != nil {
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
	h.openSupportTicket(ctx, o)
	return o, nil
}

func (h *ReportIssueHandler) notifyLandlord(ctx context.Context, o *offer.Offer) {
	if o.OrganizationID() == nil {
		return
	}

	landlord, err := h.memberships.PrimaryOwner(ctx, *o.OrganizationID())
	if err != nil {
		if !errors.Is(err, identitydomain.ErrNoPrimaryOwner) {
			h.logger.Warn("failed to resolve landlord for issue notification",
				"offer_id", o.ID(), "error", err)
		}
		return
	}

	n := notifdomain.New(
		landlord.ID,
		notifdomain.TypeMoveInIssueReported,
		"Move-in issue reported",
		fmt.Sprintf("The tenant reported a move-in issue for offer %s: %s", o.ID(), o.CancellationReason()),
		o.ID(),
	)
	if err := h.notificationRepo.Save(ctx, n); err != nil {
		h.logger.Warn("failed to create issue notification",
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

// openSupportTicket auto-creates the support ticket for the reported
// issue. When the rental request or tenant group cannot be resolved the
// ticket is skipped without failing the report.
func (h *ReportIssueHandler) openSupportTicket(ctx context.Context, o *offer.Offer) {
	if o.RentalRequestID() == nil {
		return
	}

	rr, err := h.rentalRequestRepo.FindByID(ctx, *o.RentalRequestID())
	if err != nil {
		if !errors.Is(err, domain.ErrRentalRequestNotFound) {
			h.logger.Warn("failed to load rental request for support ticket",
				"offer_id", o.ID(), "error", err)
		}
		return
	}
	if rr.TenantGroupID == nil {
		return
	}

	tenant, err := h.memberships.PrimaryTenant(ctx, *rr.TenantGroupID)
	if err != nil {
		if !errors.Is(err, identitydomain.ErrNoPrimaryTenant) {
			h.logger.Warn("failed to resolve tenant for support ticket",
				"offer_id", o.ID(), "error", err)
		}
		return
	}

	ticket := supportdomain.NewMoveInIssueTicket(
		tenant.ID, o.ID(), tenant.Email, o.CancellationReason(), o.CancellationEvidence(),
	)
	if err := h.ticketRepo.Save(ctx, ticket); err != nil {
		h.logger.Warn("failed to create support ticket",
			"offer_id", o.ID(), "user_id", tenant.ID, "error", err)
	}
}
