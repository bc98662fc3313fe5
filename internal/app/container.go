// Package app wires the application's dependencies into a container
// shared by the API server, the worker, and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/keyturn/keyturn/internal/billing"
	contractsdomain "github.com/keyturn/keyturn/internal/contracts/domain"
	contractsPersistence "github.com/keyturn/keyturn/internal/contracts/infrastructure/persistence"
	"github.com/keyturn/keyturn/internal/contracts/infrastructure/storage"
	identitydomain "github.com/keyturn/keyturn/internal/identity/domain"
	identityPersistence "github.com/keyturn/keyturn/internal/identity/infrastructure/persistence"
	messagingdomain "github.com/keyturn/keyturn/internal/messaging/domain"
	messagingPersistence "github.com/keyturn/keyturn/internal/messaging/infrastructure/persistence"
	notifdomain "github.com/keyturn/keyturn/internal/notifications/domain"
	notifPersistence "github.com/keyturn/keyturn/internal/notifications/infrastructure/persistence"
	"github.com/keyturn/keyturn/internal/notifications/infrastructure/realtime"
	"github.com/keyturn/keyturn/internal/rentals/application/commands"
	"github.com/keyturn/keyturn/internal/rentals/application/queries"
	rentalsdomain "github.com/keyturn/keyturn/internal/rentals/domain"
	"github.com/keyturn/keyturn/internal/rentals/domain/offer"
	rentalsPersistence "github.com/keyturn/keyturn/internal/rentals/infrastructure/persistence"
	sharedApplication "github.com/keyturn/keyturn/internal/shared/application"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/database"
	_ "github.com/keyturn/keyturn/internal/shared/infrastructure/database/postgres" // Register Postgres driver
	_ "github.com/keyturn/keyturn/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/keyturn/keyturn/internal/shared/infrastructure/eventbus"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/migrations"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/outbox"
	supportdomain "github.com/keyturn/keyturn/internal/support/domain"
	supportPersistence "github.com/keyturn/keyturn/internal/support/infrastructure/persistence"
	"github.com/keyturn/keyturn/pkg/config"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	OfferRepo         offer.Repository
	RentalRequestRepo rentalsdomain.RentalRequestRepository
	PropertyRepo      rentalsdomain.PropertyRepository
	ContractRepo      contractsdomain.Repository
	ConversationRepo  messagingdomain.Repository
	TicketRepo        supportdomain.Repository
	NotificationRepo  notifdomain.Repository
	UserRepo          identitydomain.UserRepository
	MembershipRepo    identitydomain.MembershipRepository
	OutboxRepo        outbox.Repository

	// Collaborators
	FileStore      *storage.FileStore
	RefundService  billing.RefundService
	Realtime       notifdomain.RealtimeGateway
	EventPublisher eventbus.Publisher

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Command Handlers
	VerifyMoveInHandler        *commands.VerifyMoveInHandler
	ReportIssueHandler         *commands.ReportIssueHandler
	ApproveCancellationHandler *commands.ApproveCancellationHandler
	RejectCancellationHandler  *commands.RejectCancellationHandler

	// Query Handlers
	GetVerificationStatusHandler *queries.GetVerificationStatusHandler
	GetLatestPaidStatusHandler   *queries.GetLatestPaidStatusHandler

	// Outbox Processor
	OutboxProcessor *outbox.Processor
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	conn, err := database.NewConnection(ctx, database.Config{
		URL:        cfg.DatabaseURL,
		SQLitePath: database.DefaultSQLitePath(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	logger.Info("connected to database", "driver", c.DBDriver)

	if err := migrations.Run(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Redis backs the realtime gateway; optional in development.
	c.Realtime = realtime.NoopGateway{}
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				conn.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, realtime events disabled", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					conn.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, realtime events disabled", "error", err)
			} else {
				c.RedisClient = redisClient
				c.Realtime = realtime.NewRedisGateway(redisClient)
				logger.Info("connected to Redis")
			}
		}
	}

	// Create repositories
	c.OfferRepo = rentalsPersistence.NewOfferRepo(conn)
	c.RentalRequestRepo = rentalsPersistence.NewRentalRequestRepo(conn)
	c.PropertyRepo = rentalsPersistence.NewPropertyRepo(conn)
	c.ContractRepo = contractsPersistence.NewContractRepo(conn)
	c.ConversationRepo = messagingPersistence.NewConversationRepo(conn)
	c.TicketRepo = supportPersistence.NewTicketRepo(conn)
	c.NotificationRepo = notifPersistence.NewNotificationRepo(conn)
	c.UserRepo = identityPersistence.NewUserRepo(conn)
	c.MembershipRepo = identityPersistence.NewMembershipRepo(conn)
	c.OutboxRepo = outbox.NewRepo(conn)
	c.UnitOfWork = database.NewUnitOfWork(conn)

	c.FileStore = storage.NewFileStore(cfg.UploadRoot)

	refundCfg := billing.DefaultClientConfig()
	refundCfg.BaseURL = cfg.PaymentServiceURL
	refundCfg.APIKey = cfg.PaymentServiceAPIKey
	refundCfg.RequestTimeout = cfg.PaymentRequestTimeout
	if cfg.PaymentServiceURL == "" {
		c.RefundService = billing.NoopRefundService{}
	} else {
		c.RefundService = billing.NewHTTPRefundService(refundCfg, logger)
	}

	// Create event publisher
	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		// Fall back to noop publisher in development
		if cfg.IsDevelopment() {
			logger.Warn("RabbitMQ not available, using noop publisher")
			c.EventPublisher = eventbus.NewNoopPublisher(logger)
		} else {
			conn.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	} else {
		c.EventPublisher = publisher
	}

	// Create command handlers
	c.VerifyMoveInHandler = commands.NewVerifyMoveInHandler(
		c.OfferRepo, c.RentalRequestRepo, c.MembershipRepo,
		c.NotificationRepo, c.Realtime, c.OutboxRepo, c.UnitOfWork, logger,
	)
	c.ReportIssueHandler = commands.NewReportIssueHandler(
		c.OfferRepo, c.RentalRequestRepo, c.MembershipRepo,
		c.NotificationRepo, c.TicketRepo, c.Realtime, c.OutboxRepo, c.UnitOfWork, logger,
	)
	c.ApproveCancellationHandler = commands.NewApproveCancellationHandler(
		c.OfferRepo, c.RentalRequestRepo, c.PropertyRepo,
		c.ContractRepo, c.ConversationRepo, c.TicketRepo, c.NotificationRepo,
		c.MembershipRepo, c.UserRepo, c.FileStore, c.RefundService,
		c.Realtime, c.OutboxRepo, c.UnitOfWork, logger,
	)
	c.RejectCancellationHandler = commands.NewRejectCancellationHandler(
		c.OfferRepo, c.RentalRequestRepo, c.MembershipRepo,
		c.NotificationRepo, c.Realtime, c.OutboxRepo, c.UnitOfWork, logger,
	)

	// Create query handlers
	c.GetVerificationStatusHandler = queries.NewGetVerificationStatusHandler(c.OfferRepo, c.RentalRequestRepo)
	c.GetLatestPaidStatusHandler = queries.NewGetLatestPaidStatusHandler(c.OfferRepo, c.RentalRequestRepo)

	// Create outbox processor
	processorCfg := outbox.DefaultProcessorConfig()
	processorCfg.PollInterval = cfg.OutboxPollInterval
	processorCfg.BatchSize = cfg.OutboxBatchSize
	processorCfg.MaxRetries = cfg.OutboxMaxRetries
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorCfg, logger)

	return c, nil
}

// Close releases the container's resources.
func (c *Container) Close() error {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("failed to close event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("failed to close Redis client", "error", err)
		}
	}
	if c.DBConn != nil {
		return c.DBConn.Close()
	}
	return nil
}
