package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	contractsdomain "github.com/keyturn/keyturn/internal/contracts/domain"
	identitydomain "github.com/keyturn/keyturn/internal/identity/domain"
	messagingdomain "github.com/keyturn/keyturn/internal/messaging/domain"
	notifdomain "github.com/keyturn/keyturn/internal/notifications/domain"
	"github.com/keyturn/keyturn/internal/rentals/domain"
	"github.com/keyturn/keyturn/internal/rentals/domain/offer"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/outbox"
	supportdomain "github.com/keyturn/keyturn/internal/support/domain"
)

// mockOfferRepo is a mock implementation of offer.Repository.
type mockOfferRepo struct {
	mock.Mock
}

func (m *mockOfferRepo) Save(ctx context.Context, o *offer.Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOfferRepo) FindByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func (m *mockOfferRepo) FindLatestPaidByProperty(ctx context.Context, propertyID uuid.UUID) (*offer.Offer, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

// mockRentalRequestRepo is a mock implementation of domain.RentalRequestRepository.
type mockRentalRequestRepo struct {
	mock.Mock
}

func (m *mockRentalRequestRepo) Save(ctx context.Context, r *domain.RentalRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockRentalRequestRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.RentalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalRequest), args.Error(1)
}

// mockPropertyRepo is a mock implementation of domain.PropertyRepository.
type mockPropertyRepo struct {
	mock.Mock
}

func (m *mockPropertyRepo) Save(ctx context.Context, p *domain.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPropertyRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

// mockContractRepo is a mock implementation of contractsdomain.Repository.
type mockContractRepo struct {
	mock.Mock
}

func (m *mockContractRepo) Save(ctx context.Context, c *contractsdomain.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockContractRepo) FindByRentalRequest(ctx context.Context, rentalRequestID uuid.UUID) ([]*contractsdomain.Contract, error) {
	args := m.Called(ctx, rentalRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*contractsdomain.Contract), args.Error(1)
}

func (m *mockContractRepo) DeleteByRentalRequest(ctx context.Context, rentalRequestID uuid.UUID) (int64, error) {
	args := m.Called(ctx, rentalRequestID)
	return args.Get(0).(int64), args.Error(1)
}

// mockConversationRepo is a mock implementation of messagingdomain.Repository.
type mockConversationRepo struct {
	mock.Mock
}

func (m *mockConversationRepo) Save(ctx context.Context, c *messagingdomain.Conversation) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockConversationRepo) FindByOffer(ctx context.Context, offerID uuid.UUID) ([]*messagingdomain.Conversation, error) {
	args := m.Called(ctx, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*messagingdomain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) ArchiveByOffer(ctx context.Context, offerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, offerID)
	return args.Get(0).(int64), args.Error(1)
}

// mockTicketRepo is a mock implementation of supportdomain.Repository.
type mockTicketRepo struct {
	mock.Mock
}

func (m *mockTicketRepo) Save(ctx context.Context, t *supportdomain.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTicketRepo) FindByID(ctx context.Context, id uuid.UUID) (*supportdomain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supportdomain.Ticket), args.Error(1)
}

func (m *mockTicketRepo) ResolveOpenByUserAndOffer(ctx context.Context, userID, offerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, offerID)
	return args.Get(0).(int64), args.Error(1)
}

// mockNotificationRepo is a mock implementation of notifdomain.Repository.
type mockNotificationRepo struct {
	mock.Mock

	saved []*notifdomain.Notification
}

func (m *mockNotificationRepo) Save(ctx context.Context, n *notifdomain.Notification) error {
	args := m.Called(ctx, n)
	if args.Error(0) == nil {
		m.saved = append(m.saved, n)
	}
	return args.Error(0)
}

func (m *mockNotificationRepo) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*notifdomain.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notifdomain.Notification), args.Error(1)
}

// mockMembershipRepo is a mock implementation of identitydomain.MembershipRepository.
type mockMembershipRepo struct {
	mock.Mock
}

func (m *mockMembershipRepo) PrimaryOwner(ctx context.Context, organizationID uuid.UUID) (*identitydomain.User, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identitydomain.User), args.Error(1)
}

func (m *mockMembershipRepo) PrimaryTenant(ctx context.Context, tenantGroupID uuid.UUID) (*identitydomain.User, error) {
	args := m.Called(ctx, tenantGroupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identitydomain.User), args.Error(1)
}

// mockUserRepo is a mock implementation of identitydomain.UserRepository.
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*identitydomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identitydomain.User), args.Error(1)
}

func (m *mockUserRepo) SetAvailability(ctx context.Context, userID uuid.UUID, available bool) error {
	args := m.Called(ctx, userID, available)
	return args.Error(0)
}

// mockRealtimeGateway is a mock implementation of notifdomain.RealtimeGateway.
type mockRealtimeGateway struct {
	mock.Mock
}

func (m *mockRealtimeGateway) EmitNotification(ctx context.Context, userID uuid.UUID, n *notifdomain.Notification) error {
	args := m.Called(ctx, userID, n)
	return args.Error(0)
}

func (m *mockRealtimeGateway) EmitMoveInVerificationUpdate(ctx context.Context, userID, offerID uuid.UUID, status string) error {
	args := m.Called(ctx, userID, offerID, status)
	return args.Error(0)
}

// mockFileRemover is a mock implementation of FileRemover.
type mockFileRemover struct {
	mock.Mock
}

func (m *mockFileRemover) Remove(relPath string) error {
	args := m.Called(relPath)
	return args.Error(0)
}

// mockRefundService is a mock implementation of billing.RefundService.
type mockRefundService struct {
	mock.Mock
}

func (m *mockRefundService) RefundOfferPayments(ctx context.Context, offerID uuid.UUID) error {
	args := m.Called(ctx, offerID)
	return args.Error(0)
}

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

// mockUnitOfWork is a mock implementation of application.UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
