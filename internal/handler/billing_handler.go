package handler

import (
	"context"

	"property-crm/internal/models"
	"property-crm/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// BillingSource reads subscription billing records.
type BillingSource interface {
	ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error)
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
}

// BillingHandler serves the bare JSON arrays the analytics dashboard reads.
// Failures produce an empty array, which readers treat as "no data".
type BillingHandler struct {
	store   *store.Store
	billing BillingSource
	logger  *logrus.Logger
}

// NewBillingHandler builds the billing endpoints; billing may be nil when no
// database is configured.
func NewBillingHandler(s *store.Store, billing BillingSource, logger *logrus.Logger) *BillingHandler {
	return &BillingHandler{store: s, billing: billing, logger: logger}
}

func (h *BillingHandler) Payments(c *fiber.Ctx) error {
	payments := store.All(h.store, store.Payments)
	if payments == nil {
		payments = []models.Payment{}
	}
	return c.JSON(payments)
}

func (h *BillingHandler) Subscriptions(c *fiber.Ctx) error {
	subs := []models.Subscription{}
	if h.billing != nil {
		if found, err := h.billing.ListSubscriptions(c.UserContext()); err != nil {
			h.logger.WithError(err).Warn("Failed to list subscriptions")
		} else {
			subs = found
		}
	}
	return c.JSON(subs)
}

func (h *BillingHandler) Plans(c *fiber.Ctx) error {
	plans := []models.SubscriptionPlan{}
	if h.billing != nil {
		if found, err := h.billing.ListPlans(c.UserContext()); err != nil {
			h.logger.WithError(err).Warn("Failed to list subscription plans")
		} else {
			plans = found
		}
	}
	return c.JSON(plans)
}
