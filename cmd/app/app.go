package app

import (
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/orgcore/notification-service/internal/adapters/config"
	natsConsumer "github.com/orgcore/notification-service/internal/adapters/controller/nats"
	"github.com/orgcore/notification-service/internal/adapters/database/postgres"
	redisStorage "github.com/orgcore/notification-service/internal/adapters/database/redis"
	"github.com/orgcore/notification-service/internal/domain/service"
	"github.com/orgcore/notification-service/pkg/logger"
	"github.com/orgcore/notification-service/pkg/logger/types"
)

// App wires storages, services and the event consumer together. Inbox is
// exported for the transport layer (HTTP/RPC) that consumes this core.
type App struct {
	DB       *gorm.DB
	Redis    *redisStorage.Client
	Logger   *types.Logger
	Inbox    *service.InboxService
	Ingest   *service.IngestService
	Consumer *natsConsumer.Consumer
}

func New(cfg *config.Config) (*App, error) {
	appLogger, err := logger.Named("app")
	if err != nil {
		return nil, err
	}

	eventStorage := postgres.NewNotificationEventStorage(cfg.Database)
	inboxStorage := postgres.NewInboxStorage(cfg.Database)

	ingestLogger, err := logger.Named("ingest")
	if err != nil {
		return nil, err
	}
	ingestService := service.NewIngestService(
		eventStorage,
		inboxStorage,
		service.NewRecipientResolver(),
		cfg.Redis.Counts,
		ingestLogger,
	)

	inboxLogger, err := logger.Named("inbox")
	if err != nil {
		return nil, err
	}
	inboxService := service.NewInboxService(inboxStorage, cfg.Redis.Counts, inboxLogger)

	consumerLogger, err := logger.Named("consumer")
	if err != nil {
		return nil, err
	}
	consumer, err := natsConsumer.NewConsumer(cfg.Nats, ingestService, consumerLogger)
	if err != nil {
		return nil, err
	}

	return &App{
		DB:       cfg.Database,
		Redis:    cfg.Redis,
		Logger:   appLogger,
		Inbox:    inboxService,
		Ingest:   ingestService,
		Consumer: consumer,
	}, nil
}

// Start begins consuming notification messages and blocks until the process
// is told to stop.
func (a *App) Start() error {
	if err := a.Consumer.Start(); err != nil {
		return err
	}
	a.Logger.Info("Notification service started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	a.Logger.Info("Notification service stopping")
	a.Consumer.Close()
	return nil
}
