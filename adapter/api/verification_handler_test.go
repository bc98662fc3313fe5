package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyturn/keyturn/internal/billing"
	contractsdomain "github.com/keyturn/keyturn/internal/contracts/domain"
	"github.com/keyturn/keyturn/internal/contracts/infrastructure/storage"
	identitydomain "github.com/keyturn/keyturn/internal/identity/domain"
	messagingdomain "github.com/keyturn/keyturn/internal/messaging/domain"
	notifdomain "github.com/keyturn/keyturn/internal/notifications/domain"
	"github.com/keyturn/keyturn/internal/rentals/application/commands"
	"github.com/keyturn/keyturn/internal/rentals/application/queries"
	"github.com/keyturn/keyturn/internal/rentals/domain"
	"github.com/keyturn/keyturn/internal/rentals/domain/offer"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/outbox"
	supportdomain "github.com/keyturn/keyturn/internal/support/domain"
)

// fakeOfferRepo is an in-memory implementation of offer.Repository.
type fakeOfferRepo struct {
	offers map[uuid.UUID]*offer.Offer
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: make(map[uuid.UUID]*offer.Offer)}
}

func (r *fakeOfferRepo) Save(ctx context.Context, o *offer.Offer) error {
	r.offers[o.ID()] = o
	return nil
}

func (r *fakeOfferRepo) FindByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	o, ok := r.offers[id]
	if !ok {
		return nil, offer.ErrOfferNotFound
	}
	return o, nil
}

func (r *fakeOfferRepo) FindLatestPaidByProperty(ctx context.Context, propertyID uuid.UUID) (*offer.Offer, error) {
	for _, o := range r.offers {
		if o.PropertyID() != nil && *o.PropertyID() == propertyID && o.Status() == offer.StatusPaid {
			return o, nil
		}
	}
	return nil, nil
}

type fakeRentalRequestRepo struct {
	requests map[uuid.UUID]*domain.RentalRequest
}

func newFakeRentalRequestRepo() *fakeRentalRequestRepo {
	return &fakeRentalRequestRepo{requests: make(map[uuid.UUID]*domain.RentalRequest)}
}

func (r *fakeRentalRequestRepo) Save(ctx context.Context, rr *domain.RentalRequest) error {
	r.requests[rr.ID] = rr
	return nil
}

func (r *fakeRentalRequestRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.RentalRequest, error) {
	rr, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRentalRequestNotFound
	}
	return rr, nil
}

// fakeMembershipRepo resolves every group to a fixed tenant and every
// organization to a fixed landlord.
type fakeMembershipRepo struct {
	tenant   *identitydomain.User
	landlord *identitydomain.User
}

func (r *fakeMembershipRepo) PrimaryOwner(ctx context.Context, organizationID uuid.UUID) (*identitydomain.User, error) {
	if r.landlord == nil {
		return nil, identitydomain.ErrNoPrimaryOwner
	}
	return r.landlord, nil
}

func (r *fakeMembershipRepo) PrimaryTenant(ctx context.Context, tenantGroupID uuid.UUID) (*identitydomain.User, error) {
	if r.tenant == nil {
		return nil, identitydomain.ErrNoPrimaryTenant
	}
	return r.tenant, nil
}

type fakeNotificationRepo struct {
	saved []*notifdomain.Notification
}

func (r *fakeNotificationRepo) Save(ctx context.Context, n *notifdomain.Notification) error {
	r.saved = append(r.saved, n)
	return nil
}

func (r *fakeNotificationRepo) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*notifdomain.Notification, error) {
	var result []*notifdomain.Notification
	for _, n := range r.saved {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

type fakeTicketRepo struct {
	tickets []*supportdomain.Ticket
}

func (r *fakeTicketRepo) Save(ctx context.Context, t *supportdomain.Ticket) error {
	r.tickets = append(r.tickets, t)
	return nil
}

func (r *fakeTicketRepo) FindByID(ctx context.Context, id uuid.UUID) (*supportdomain.Ticket, error) {
	for _, t := range r.tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTicketRepo) ResolveOpenByUserAndOffer(ctx context.Context, userID, offerID uuid.UUID) (int64, error) {
	var n int64
	for _, t := range r.tickets {
		if t.UserID == userID && t.Title == supportdomain.MoveInIssueTitle(offerID) && t.Status == supportdomain.TicketOpen {
			t.Status = supportdomain.TicketResolved
			n++
		}
	}
	return n, nil
}

type fakePropertyRepo struct {
	properties map[uuid.UUID]*domain.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{properties: make(map[uuid.UUID]*domain.Property)}
}

func (r *fakePropertyRepo) Save(ctx context.Context, p *domain.Property) error {
	r.properties[p.ID] = p
	return nil
}

func (r *fakePropertyRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	p, ok := r.properties[id]
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}
	return p, nil
}

type fakeContractRepo struct {
	contracts []*contractsdomain.Contract
}

func (r *fakeContractRepo) Save(ctx context.Context, c *contractsdomain.Contract) error {
	r.contracts = append(r.contracts, c)
	return nil
}

func (r *fakeContractRepo) FindByRentalRequest(ctx context.Context, rentalRequestID uuid.UUID) ([]*contractsdomain.Contract, error) {
	var result []*contractsdomain.Contract
	for _, c := range r.contracts {
		if c.RentalRequestID == rentalRequestID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *fakeContractRepo) DeleteByRentalRequest(ctx context.Context, rentalRequestID uuid.UUID) (int64, error) {
	var kept []*contractsdomain.Contract
	var n int64
	for _, c := range r.contracts {
		if c.RentalRequestID == rentalRequestID {
			n++
			continue
		}
		kept = append(kept, c)
	}
	r.contracts = kept
	return n, nil
}

type fakeConversationRepo struct {
	conversations []*messagingdomain.Conversation
}

func (r *fakeConversationRepo) Save(ctx context.Context, c *messagingdomain.Conversation) error {
	r.conversations = append(r.conversations, c)
	return nil
}

func (r *fakeConversationRepo) FindByOffer(ctx context.Context, offerID uuid.UUID) ([]*messagingdomain.Conversation, error) {
	var result []*messagingdomain.Conversation
	for _, c := range r.conversations {
		if c.OfferID != nil && *c.OfferID == offerID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *fakeConversationRepo) ArchiveByOffer(ctx context.Context, offerID uuid.UUID) (int64, error) {
	var n int64
	for _, c := range r.conversations {
		if c.OfferID != nil && *c.OfferID == offerID && c.Status != messagingdomain.ConversationArchived {
			c.Status = messagingdomain.ConversationArchived
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*identitydomain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*identitydomain.User)}
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*identitydomain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, identitydomain.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) SetAvailability(ctx context.Context, userID uuid.UUID, available bool) error {
	u, ok := r.users[userID]
	if !ok {
		return identitydomain.ErrUserNotFound
	}
	u.Available = available
	return nil
}

type fakeRealtimeGateway struct{}

func (fakeRealtimeGateway) EmitNotification(ctx context.Context, userID uuid.UUID, n *notifdomain.Notification) error {
	return nil
}

func (fakeRealtimeGateway) EmitMoveInVerificationUpdate(ctx context.Context, userID, offerID uuid.UUID, status string) error {
	return nil
}

type fakeOutboxRepo struct {
	messages []*outbox.Message
}

func (r *fakeOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	r.messages = append(r.messages, msgs...)
	return nil
}

func (r *fakeOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkPublished(ctx context.Context, id int64) error { return nil }

func (r *fakeOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return nil
}

func (r *fakeOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error { return nil }

func (r *fakeOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	return 0, nil
}

// fakeUnitOfWork passes the context through unchanged.
type fakeUnitOfWork struct{}

func (fakeUnitOfWork) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (fakeUnitOfWork) Commit(ctx context.Context) error                   { return nil }
func (fakeUnitOfWork) Rollback(ctx context.Context) error                 { return nil }

// testEnv wires the handler against in-memory storage.
type testEnv struct {
	server *Server

	offers        *fakeOfferRepo
	rentals       *fakeRentalRequestRepo
	properties    *fakePropertyRepo
	contracts     *fakeContractRepo
	conversations *fakeConversationRepo
	users         *fakeUserRepo
	notifications *fakeNotificationRepo
	tickets       *fakeTicketRepo
	files         *storage.FileStore

	tenant   *identitydomain.User
	landlord *identitydomain.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		offers:        newFakeOfferRepo(),
		rentals:       newFakeRentalRequestRepo(),
		properties:    newFakePropertyRepo(),
		contracts:     &fakeContractRepo{},
		conversations: &fakeConversationRepo{},
		users:         newFakeUserRepo(),
		notifications: &fakeNotificationRepo{},
		tickets:       &fakeTicketRepo{},
		files:         storage.NewFileStore(t.TempDir()),
		tenant:        &identitydomain.User{ID: uuid.New(), Email: "tenant@example.com"},
		landlord:      &identitydomain.User{ID: uuid.New(), Email: "landlord@example.com"},
	}
	env.users.users[env.tenant.ID] = env.tenant
	env.users.users[env.landlord.ID] = env.landlord

	memberships := &fakeMembershipRepo{tenant: env.tenant, landlord: env.landlord}
	realtime := fakeRealtimeGateway{}
	outboxRepo := &fakeOutboxRepo{}
	uow := fakeUnitOfWork{}

	handler := NewVerificationHandler(VerificationHandlerConfig{
		VerifyMoveIn: commands.NewVerifyMoveInHandler(
			env.offers, env.rentals, memberships, env.notifications, realtime, outboxRepo, uow, nil),
		ReportIssue: commands.NewReportIssueHandler(
			env.offers, env.rentals, memberships, env.notifications, env.tickets, realtime, outboxRepo, uow, nil),
		ApproveCancellation: commands.NewApproveCancellationHandler(
			env.offers, env.rentals, env.properties, env.contracts, env.conversations,
			env.tickets, env.notifications, memberships, env.users, env.files,
			billing.NoopRefundService{}, realtime, outboxRepo, uow, nil),
		RejectCancellation: commands.NewRejectCancellationHandler(
			env.offers, env.rentals, memberships, env.notifications, realtime, outboxRepo, uow, nil),
		GetStatus:     queries.NewGetVerificationStatusHandler(env.offers, env.rentals),
		GetLatestPaid: queries.NewGetLatestPaidStatusHandler(env.offers, env.rentals),
		Files:         env.files,
	})

	env.server = NewServer(DefaultServerConfig(), handler, nil)
	return env
}

// seedPaidOffer stores a paid offer plus its rental request.
func (env *testEnv) seedPaidOffer() *offer.Offer {
	rentalRequestID := uuid.New()
	propertyID := uuid.New()
	organizationID := uuid.New()
	tenantGroupID := uuid.New()

	o := offer.NewOffer(&rentalRequestID, &propertyID, &organizationID)
	o.MarkPaid(nil)
	o.ClearDomainEvents()
	env.offers.offers[o.ID()] = o

	env.rentals.requests[rentalRequestID] = &domain.RentalRequest{
		ID:            rentalRequestID,
		TenantGroupID: &tenantGroupID,
		PropertyID:    &propertyID,
		Status:        domain.RentalRequestActive,
		IsLocked:      true,
		PoolStatus:    domain.PoolActive,
	}
	env.properties.properties[propertyID] = &domain.Property{
		ID:     propertyID,
		Status: domain.PropertyRented,
	}
	return o
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.server.mux.ServeHTTP(rec, req)
	return rec
}

func TestVerificationHandler_GetStatus(t *testing.T) {
	t.Run("returns the verification snapshot", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.seedPaidOffer()

		rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/offers/"+o.ID().String()+"/status", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var dto queries.VerificationStatusDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
		assert.Equal(t, o.ID(), dto.OfferID)
		assert.Equal(t, "pending", dto.Status)
		assert.NotNil(t, dto.Evidence)
	})

	t.Run("404s on an unknown offer", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/offers/"+uuid.NewString()+"/status", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("400s on a malformed offer id", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/offers/not-a-uuid/status", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVerificationHandler_VerifyMoveIn(t *testing.T) {
	t.Run("confirms the move-in for the tenant", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.seedPaidOffer()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/"+o.ID().String()+"/verify", nil)
		req.Header.Set("X-User-ID", env.tenant.ID.String())
		rec := env.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, offer.VerificationSuccess, o.VerificationStatus())
		require.Len(t, env.notifications.saved, 1)
		assert.Equal(t, env.landlord.ID, env.notifications.saved[0].UserID)
	})

	t.Run("401s without a user identity", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.seedPaidOffer()

		rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/offers/"+o.ID().String()+"/verify", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, offer.VerificationPending, o.VerificationStatus())
	})

	t.Run("401s for a user who is not the tenant", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.seedPaidOffer()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/"+o.ID().String()+"/verify", nil)
		req.Header.Set("X-User-ID", uuid.NewString())
		rec := env.do(req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("409s on a cancelled offer", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.seedPaidOffer()
		require.NoError(t, o.Cancel(""))
		o.ClearDomainEvents()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/"+o.ID().String()+"/verify", nil)
		req.Header.Set("X-User-ID", env.tenant.ID.String())
		rec := env.do(req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestVerificationHandler_ReportIssue(t *testing.T) {
	multipartBody := func(t *testing.T, reason string, files map[string]string) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("reason", reason))
		for name, content := range files {
			fw, err := mw.CreateFormFile("moveInEvidence", name)
			require.NoError(t, err)
			_, err = fw.Write([]byte(content))
			require.NoError(t, err)
		}
		require.NoError(t, mw.Close())
		return &buf, mw.FormDataContentType()
	}

	t.Run("stores evidence and opens a support ticket", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.seedPaidOffer()

		body, contentType := multipartBody(t, "water damage", map[string]string{"door.jpg": "jpeg bytes"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/"+o.ID().String()+"/report-issue", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-User-ID", env.tenant.ID.String())
		rec := env.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, offer.VerificationIssueReported, o.VerificationStatus())
		assert.Equal(t, "water damage", o.CancellationReason())
		require.Len(t, o.CancellationEvidence(), 1)
		assert.Contains(t, o.CancellationEvidence()[0], "move-in/"+o.ID().String()+"/")
		assert.Contains(t, o.CancellationEvidence()[0], "door.jpg")

		require.Len(t, env.tickets.tickets, 1)
		assert.Equal(t, supportdomain.MoveInIssueTitle(o.ID()), env.tickets.tickets[0].Title)
	})

	t.Run("400s without a reason", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.seedPaidOffer()

		body, contentType := multipartBody(t, "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/"+o.ID().String()+"/report-issue", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-User-ID", env.tenant.ID.String())
		rec := env.do(req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, offer.VerificationPending, o.VerificationStatus())
	})
}

func TestVerificationHandler_RejectCancellation(t *testing.T) {
	t.Run("reverts a reported issue", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.seedPaidOffer()
		require.NoError(t, o.ReportIssue("damage", "", nil))
		o.ClearDomainEvents()

		body := bytes.NewBufferString(`{"notes":"not substantiated"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/"+o.ID().String()+"/admin/reject", body)
		req.Header.Set("X-User-ID", uuid.NewString())
		rec := env.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, offer.VerificationSuccess, o.VerificationStatus())
		assert.Equal(t, "not substantiated", o.VerificationNotes())
	})

	t.Run("tolerates an empty body", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.seedPaidOffer()
		require.NoError(t, o.ReportIssue("damage", "", nil))
		o.ClearDomainEvents()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/"+o.ID().String()+"/admin/reject", nil)
		req.Header.Set("X-User-ID", uuid.NewString())
		rec := env.do(req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestVerificationHandler_ApproveCancellation(t *testing.T) {
	t.Run("cancels the offer and cascades through related records", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.seedPaidOffer()
		require.NoError(t, o.ReportIssue("damage", "", nil))
		o.ClearDomainEvents()

		rel, err := env.files.Save("contracts/rental.pdf", bytes.NewBufferString("pdf"))
		require.NoError(t, err)
		env.contracts.contracts = append(env.contracts.contracts, &contractsdomain.Contract{
			ID:              uuid.New(),
			RentalRequestID: *o.RentalRequestID(),
			FilePath:        rel,
		})
		offerID := o.ID()
		env.conversations.conversations = append(env.conversations.conversations, &messagingdomain.Conversation{
			ID:      uuid.New(),
			OfferID: &offerID,
			Status:  messagingdomain.ConversationActive,
		})

		body := bytes.NewBufferString(`{"notes":"confirmed by site visit"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/"+o.ID().String()+"/admin/approve", body)
		req.Header.Set("X-User-ID", uuid.NewString())
		rec := env.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, offer.VerificationCancelled, o.VerificationStatus())
		assert.Equal(t, "confirmed by site visit", o.VerificationNotes())

		rr := env.rentals.requests[*o.RentalRequestID()]
		assert.Equal(t, domain.RentalRequestCancelled, rr.Status)
		assert.False(t, rr.IsLocked)
		assert.Equal(t, domain.PoolCancelled, rr.PoolStatus)

		p := env.properties.properties[*o.PropertyID()]
		assert.Equal(t, domain.PropertyAvailable, p.Status)
		assert.True(t, p.Availability)

		assert.Empty(t, env.contracts.contracts)
		assert.Equal(t, messagingdomain.ConversationArchived, env.conversations.conversations[0].Status)
		assert.True(t, env.landlord.Available)
		assert.Len(t, env.notifications.saved, 2)
	})

	t.Run("409s on a second approval", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.seedPaidOffer()
		require.NoError(t, o.ReportIssue("damage", "", nil))
		require.NoError(t, o.Cancel("first approval"))
		o.ClearDomainEvents()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/"+o.ID().String()+"/admin/approve", nil)
		req.Header.Set("X-User-ID", uuid.NewString())
		rec := env.do(req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestVerificationHandler_GetLatestPaidStatus(t *testing.T) {
	t.Run("returns the snapshot for the latest paid offer", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.seedPaidOffer()

		rec := env.do(httptest.NewRequest(http.MethodGet,
			"/api/v1/property/"+o.PropertyID().String()+"/latest-paid-status", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Success bool                           `json:"success"`
			Data    *queries.VerificationStatusDTO `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Data)
		assert.Equal(t, o.ID(), resp.Data.OfferID)
	})

	t.Run("returns a null payload when no paid offer exists", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(httptest.NewRequest(http.MethodGet,
			"/api/v1/property/"+uuid.NewString()+"/latest-paid-status", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Success bool            `json:"success"`
			Data    json.RawMessage `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "null", string(resp.Data))
	})
}
