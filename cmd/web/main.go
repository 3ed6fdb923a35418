package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"property-crm/internal/config"
	"property-crm/internal/database"
	"property-crm/internal/models"
	"property-crm/internal/repository"
	"property-crm/internal/router"
	"property-crm/internal/service"
	"property-crm/internal/store"
	"property-crm/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := utils.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	// MySQL backs accounts, webhooks, billing and import history
	var db *sqlx.DB
	if conn, err := database.NewMySQL(cfg); err != nil {
		log.WithError(err).Warn("Failed to connect to database; continuing without accounts, webhooks and import history")
	} else {
		db = conn
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := database.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("Failed to migrate database")
		}
		cancel()
	}

	// Redis holds store snapshots and the webhook queue
	var redisClient *redis.Client
	if client, err := database.NewRedis(cfg); err != nil {
		log.WithError(err).Warn("Failed to connect to Redis; snapshots kept in memory and webhooks delivered in-process")
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	dispatcher := newDispatcher(cfg, db, redisClient)

	var snapshots store.SnapshotStore = store.NewMemorySnapshotStore()
	if redisClient != nil {
		snapshots = store.NewRedisSnapshotStore(redisClient)
	}
	crm := store.New(snapshots,
		store.WithKeyPrefix(cfg.SnapshotPrefix),
		store.WithEventSink(dispatcher),
		store.WithLogger(log),
		store.WithSettings(models.Settings{LateFee: service.DefaultLateFeeConfig(cfg)}),
	)

	var seed *store.Data
	if cfg.SeedFixtures {
		seed = store.Fixtures(time.Now().UTC())
	}
	if err := crm.Load(context.Background(), seed); err != nil {
		log.WithError(err).Fatal("Failed to load store")
	}

	ctx, stop := context.WithCancel(context.Background())
	autosaveDone := make(chan struct{})
	go func() {
		defer close(autosaveDone)
		crm.AutoSave(ctx, cfg.SnapshotInterval)
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    cfg.UploadMaxSize + 1<<20, // multipart overhead
		ErrorHandler: router.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	router.Setup(app, router.Dependencies{
		Config: cfg,
		Store:  crm,
		DB:     db,
		Events: dispatcher,
		Logger: log,
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\nGracefully shutting down...")
		_ = app.Shutdown()
	}()

	port := fmt.Sprintf(":%s", cfg.AppPort)
	log.WithField("addr", port).Info("Server starting")
	if err := app.Listen(port); err != nil {
		log.WithError(err).Error("Server stopped")
	}

	// Final snapshot is written by AutoSave when ctx is cancelled
	stop()
	<-autosaveDone
	if err := dispatcher.Close(); err != nil {
		log.WithError(err).Warn("Failed to close webhook queue")
	}

	fmt.Println("Server exited")
}

// newDispatcher wires webhook delivery. Without MySQL there are no
// subscriptions and events are dropped; with Redis deliveries go through the
// asynq queue served by cmd/worker.
func newDispatcher(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client) *service.WebhookDispatcher {
	var subs service.SubscriptionSource
	if db != nil {
		subs = repository.NewWebhookRepository(db)
	}

	opts := []service.WebhookOption{service.WithWebhookLogger(utils.GetLogger())}
	if redisClient != nil {
		opts = append(opts, service.WithTaskQueue(asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})))
	}
	return service.NewWebhookDispatcher(subs, cfg.WebhookTimeout, opts...)
}
