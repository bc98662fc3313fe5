package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	contractsdomain "github.com/keyturn/keyturn/internal/contracts/domain"
	identitydomain "github.com/keyturn/keyturn/internal/identity/domain"
	"github.com/keyturn/keyturn/internal/rentals/domain"
	"github.com/keyturn/keyturn/internal/rentals/domain/offer"
)

type approveFixture struct {
	offerRepo        *mockOfferRepo
	rentalRepo       *mockRentalRequestRepo
	propertyRepo     *mockPropertyRepo
	contractRepo     *mockContractRepo
	conversationRepo *mockConversationRepo
	ticketRepo       *mockTicketRepo
	notificationRepo *mockNotificationRepo
	memberships      *mockMembershipRepo
	userRepo         *mockUserRepo
	files            *mockFileRemover
	refunds          *mockRefundService
	realtime         *mockRealtimeGateway
	outboxRepo       *mockOutboxRepo
	uow              *mockUnitOfWork

	handler *ApproveCancellationHandler

	offer    *offer.Offer
	rental   *domain.RentalRequest
	property *domain.Property
	contract *contractsdomain.Contract
	tenant   *identitydomain.User
	landlord *identitydomain.User
}

func newApproveFixture(t *testing.T) *approveFixture {
	t.Helper()

	f := &approveFixture{
		offerRepo:        new(mockOfferRepo),
		rentalRepo:       new(mockRentalRequestRepo),
		propertyRepo:     new(mockPropertyRepo),
		contractRepo:     new(mockContractRepo),
		conversationRepo: new(mockConversationRepo),
		ticketRepo:       new(mockTicketRepo),
		notificationRepo: new(mockNotificationRepo),
		memberships:      new(mockMembershipRepo),
		userRepo:         new(mockUserRepo),
		files:            new(mockFileRemover),
		refunds:          new(mockRefundService),
		realtime:         new(mockRealtimeGateway),
		outboxRepo:       new(mockOutboxRepo),
		uow:              new(mockUnitOfWork),
	}
	f.handler = NewApproveCancellationHandler(
		f.offerRepo, f.rentalRepo, f.propertyRepo, f.contractRepo,
		f.conversationRepo, f.ticketRepo, f.notificationRepo,
		f.memberships, f.userRepo, f.files, f.refunds, f.realtime,
		f.outboxRepo, f.uow, nil,
	)

	rentalRequestID := uuid.New()
	propertyID := uuid.New()
	organizationID := uuid.New()
	tenantGroupID := uuid.New()

	o := offer.NewOffer(&rentalRequestID, &propertyID, &organizationID)
	o.MarkPaid(nil)
	require.NoError(t, o.ReportIssue("damage", "", []string{"/uploads/a.jpg"}))
	o.ClearDomainEvents()
	f.offer = o

	f.rental = &domain.RentalRequest{
		ID:            rentalRequestID,
		TenantGroupID: &tenantGroupID,
		PropertyID:    &propertyID,
		Status:        domain.RentalRequestActive,
		IsLocked:      true,
		PoolStatus:    domain.PoolActive,
	}
	f.property = &domain.Property{
		ID:           propertyID,
		Status:       domain.PropertyRented,
		Availability: false,
	}
	f.contract = &contractsdomain.Contract{
		ID:              uuid.New(),
		RentalRequestID: rentalRequestID,
		FilePath:        "contracts/rental.pdf",
	}
	f.tenant = &identitydomain.User{ID: uuid.New(), Email: "tenant@example.com"}
	f.landlord = &identitydomain.User{ID: uuid.New(), Email: "landlord@example.com"}

	return f
}

// expectTransaction wires the happy-path transactional phase.
func (f *approveFixture) expectTransaction(txCtx context.Context) {
	f.offerRepo.On("FindByID", txCtx, f.offer.ID()).Return(f.offer, nil)
	f.offerRepo.On("Save", txCtx, f.offer).Return(nil)
	f.rentalRepo.On("FindByID", txCtx, f.rental.ID).Return(f.rental, nil)
	f.rentalRepo.On("Save", txCtx, f.rental).Return(nil)
	f.propertyRepo.On("FindByID", txCtx, f.property.ID).Return(f.property, nil)
	f.propertyRepo.On("Save", txCtx, f.property).Return(nil)
	f.contractRepo.On("FindByRentalRequest", txCtx, f.rental.ID).
		Return([]*contractsdomain.Contract{f.contract}, nil)
	f.contractRepo.On("DeleteByRentalRequest", txCtx, f.rental.ID).Return(int64(1), nil)
	f.conversationRepo.On("ArchiveByOffer", txCtx, f.offer.ID()).Return(int64(2), nil)
	f.memberships.On("PrimaryTenant", txCtx, *f.rental.TenantGroupID).Return(f.tenant, nil)
	f.memberships.On("PrimaryOwner", txCtx, *f.offer.OrganizationID()).Return(f.landlord, nil)
	f.ticketRepo.On("ResolveOpenByUserAndOffer", txCtx, f.tenant.ID, f.offer.ID()).Return(int64(1), nil)
	f.notificationRepo.On("Save", txCtx, mock.AnythingOfType("*domain.Notification")).Return(nil)
	f.outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)
}

func TestApproveCancellationHandler_Handle(t *testing.T) {
	t.Run("cancels the offer and cascades to every related record", func(t *testing.T) {
		f := newApproveFixture(t)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		f.uow.On("Begin", ctx).Return(txCtx, nil)
		f.uow.On("Commit", txCtx).Return(nil)
		f.expectTransaction(txCtx)

		f.files.On("Remove", "contracts/rental.pdf").Return(nil)
		f.refunds.On("RefundOfferPayments", ctx, f.offer.ID()).Return(nil)
		f.userRepo.On("SetAvailability", ctx, f.landlord.ID, true).Return(nil)
		f.realtime.On("EmitNotification", ctx, mock.Anything, mock.Anything).Return(nil)
		f.realtime.On("EmitMoveInVerificationUpdate", ctx, mock.Anything, f.offer.ID(), "cancelled").Return(nil)

		o, err := f.handler.Handle(ctx, ApproveCancellationCommand{
			OfferID: f.offer.ID(),
			AdminID: uuid.New(),
			Notes:   "confirmed by site visit",
		})

		require.NoError(t, err)
		assert.Equal(t, offer.VerificationCancelled, o.VerificationStatus())
		assert.Equal(t, "confirmed by site visit", o.VerificationNotes())

		assert.Equal(t, domain.RentalRequestCancelled, f.rental.Status)
		assert.False(t, f.rental.IsLocked)
		assert.Equal(t, domain.PoolCancelled, f.rental.PoolStatus)
		assert.Equal(t, domain.PropertyAvailable, f.property.Status)
		assert.True(t, f.property.Availability)

		// One notification row each for tenant and landlord, both
		// referencing the offer.
		require.Len(t, f.notificationRepo.saved, 2)
		recipients := []uuid.UUID{f.notificationRepo.saved[0].UserID, f.notificationRepo.saved[1].UserID}
		assert.ElementsMatch(t, []uuid.UUID{f.tenant.ID, f.landlord.ID}, recipients)
		for _, n := range f.notificationRepo.saved {
			require.NotNil(t, n.ReferenceID)
			assert.Equal(t, f.offer.ID(), *n.ReferenceID)
		}

		f.uow.AssertExpectations(t)
		f.offerRepo.AssertExpectations(t)
		f.contractRepo.AssertExpectations(t)
		f.conversationRepo.AssertExpectations(t)
		f.ticketRepo.AssertExpectations(t)
		f.files.AssertExpectations(t)
		f.refunds.AssertExpectations(t)
		f.userRepo.AssertExpectations(t)
		f.realtime.AssertExpectations(t)
	})

	t.Run("rolls back without compensations when a step fails", func(t *testing.T) {
		f := newApproveFixture(t)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		f.uow.On("Begin", ctx).Return(txCtx, nil)
		f.uow.On("Rollback", txCtx).Return(nil)
		f.offerRepo.On("FindByID", txCtx, f.offer.ID()).Return(f.offer, nil)
		f.offerRepo.On("Save", txCtx, f.offer).Return(nil)
		f.rentalRepo.On("FindByID", txCtx, f.rental.ID).Return(f.rental, nil)
		f.rentalRepo.On("Save", txCtx, f.rental).Return(nil)
		f.propertyRepo.On("FindByID", txCtx, f.property.ID).Return(f.property, nil)
		f.propertyRepo.On("Save", txCtx, f.property).Return(nil)
		f.contractRepo.On("FindByRentalRequest", txCtx, f.rental.ID).
			Return(nil, errors.New("contracts table unavailable"))

		_, err := f.handler.Handle(ctx, ApproveCancellationCommand{
			OfferID: f.offer.ID(),
			AdminID: uuid.New(),
		})

		assert.Error(t, err)
		f.uow.AssertExpectations(t)
		f.files.AssertNotCalled(t, "Remove", mock.Anything)
		f.refunds.AssertNotCalled(t, "RefundOfferPayments", mock.Anything, mock.Anything)
		f.realtime.AssertNotCalled(t, "EmitNotification", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reports success even when the refund fails", func(t *testing.T) {
		f := newApproveFixture(t)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		f.uow.On("Begin", ctx).Return(txCtx, nil)
		f.uow.On("Commit", txCtx).Return(nil)
		f.expectTransaction(txCtx)

		f.files.On("Remove", "contracts/rental.pdf").Return(nil)
		f.refunds.On("RefundOfferPayments", ctx, f.offer.ID()).
			Return(errors.New("payment service down"))
		f.userRepo.On("SetAvailability", ctx, f.landlord.ID, true).Return(nil)
		f.realtime.On("EmitNotification", ctx, mock.Anything, mock.Anything).Return(nil)
		f.realtime.On("EmitMoveInVerificationUpdate", ctx, mock.Anything, f.offer.ID(), "cancelled").Return(nil)

		o, err := f.handler.Handle(ctx, ApproveCancellationCommand{
			OfferID: f.offer.ID(),
			AdminID: uuid.New(),
		})

		require.NoError(t, err)
		assert.Equal(t, offer.VerificationCancelled, o.VerificationStatus())
		f.refunds.AssertExpectations(t)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("fails when the offer does not exist", func(t *testing.T) {
		f := newApproveFixture(t)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")
		missingID := uuid.New()

		f.uow.On("Begin", ctx).Return(txCtx, nil)
		f.uow.On("Rollback", txCtx).Return(nil)
		f.offerRepo.On("FindByID", txCtx, missingID).Return(nil, offer.ErrOfferNotFound)

		_, err := f.handler.Handle(ctx, ApproveCancellationCommand{
			OfferID: missingID,
			AdminID: uuid.New(),
		})

		assert.ErrorIs(t, err, offer.ErrOfferNotFound)
	})

	t.Run("second approval loses cleanly", func(t *testing.T) {
		f := newApproveFixture(t)
		require.NoError(t, f.offer.Cancel("first approval"))
		f.offer.ClearDomainEvents()

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		f.uow.On("Begin", ctx).Return(txCtx, nil)
		f.uow.On("Rollback", txCtx).Return(nil)
		f.offerRepo.On("FindByID", txCtx, f.offer.ID()).Return(f.offer, nil)

		_, err := f.handler.Handle(ctx, ApproveCancellationCommand{
			OfferID: f.offer.ID(),
			AdminID: uuid.New(),
		})

		assert.ErrorIs(t, err, offer.ErrOfferCancelled)
		f.refunds.AssertNotCalled(t, "RefundOfferPayments", mock.Anything, mock.Anything)
	})
}
