package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"property-crm/internal/config"
	"property-crm/internal/service"
	"property-crm/internal/utils"
	"property-crm/internal/worker"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

func main() {
	log := utils.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				service.WebhookQueue: 1,
			},
			Logger: log,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.WithError(err).WithField("task", task.Type()).Warn("Task failed")
			}),
		},
	)

	// Deliveries are posted directly; subscriptions were resolved when the
	// task was enqueued.
	dispatcher := service.NewWebhookDispatcher(nil, cfg.WebhookTimeout, service.WithWebhookLogger(log))

	mux := asynq.NewServeMux()
	worker.RegisterHandlers(mux, dispatcher, log)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Shutting down worker")
		srv.Shutdown()
	}()

	log.WithFields(logrus.Fields{
		"concurrency": cfg.WorkerConcurrency,
		"queue":       service.WebhookQueue,
	}).Info("Worker starting")
	if err := srv.Run(mux); err != nil {
		log.WithError(err).Fatal("Failed to start worker")
	}

	log.Info("Worker exited")
}
