package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"property-crm/internal/service"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Deliverer posts one webhook body to its subscriber.
type Deliverer interface {
	Deliver(ctx context.Context, delivery service.WebhookDelivery) error
}

type WebhookTaskHandler struct {
	deliverer Deliverer
	logger    *logrus.Logger
}

func NewWebhookTaskHandler(deliverer Deliverer, logger *logrus.Logger) *WebhookTaskHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &WebhookTaskHandler{deliverer: deliverer, logger: logger}
}

// Handle runs a webhook:deliver task. Deliveries are not retried; a failure
// is logged and reported to asynq so the task is archived.
func (h *WebhookTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var delivery service.WebhookDelivery
	if err := json.Unmarshal(task.Payload(), &delivery); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	log := h.logger.WithFields(logrus.Fields{
		"subscription_id": delivery.SubscriptionID,
		"url":             delivery.URL,
	})

	if err := h.deliverer.Deliver(ctx, delivery); err != nil {
		log.WithError(err).Warn("Webhook delivery failed")
		return fmt.Errorf("deliver webhook %d: %w: %w", delivery.SubscriptionID, err, asynq.SkipRetry)
	}

	log.Info("Webhook delivered")
	return nil
}

func RegisterHandlers(mux *asynq.ServeMux, deliverer Deliverer, logger *logrus.Logger) {
	mux.HandleFunc(service.TypeWebhookDeliver, NewWebhookTaskHandler(deliverer, logger).Handle)
}
