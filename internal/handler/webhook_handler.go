package handler

import (
	"context"
	"errors"
	"strconv"

	"property-crm/internal/models"
	"property-crm/internal/repository"
	"property-crm/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// WebhookRepository manages webhook subscriptions.
type WebhookRepository interface {
	List(ctx context.Context, subscriberID string) ([]models.WebhookSubscription, error)
	FindByID(ctx context.Context, id int) (*models.WebhookSubscription, error)
	Create(ctx context.Context, sub *models.WebhookSubscription) error
	Update(ctx context.Context, sub *models.WebhookSubscription) error
	Delete(ctx context.Context, id int) error
}

type WebhookHandler struct {
	repo WebhookRepository
}

func NewWebhookHandler(repo WebhookRepository) *WebhookHandler {
	return &WebhookHandler{repo: repo}
}

func (h *WebhookHandler) List(c *fiber.Ctx) error {
	subs, err := h.repo.List(c.UserContext(), c.Query("subscriber_id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve webhooks", err)
	}
	return utils.SuccessResponse(c, "Webhooks retrieved successfully", subs)
}

func (h *WebhookHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid webhook ID", err)
	}

	sub, err := h.repo.FindByID(c.UserContext(), id)
	if err != nil {
		return webhookError(c, err)
	}
	return utils.SuccessResponse(c, "Webhook retrieved successfully", sub)
}

func (h *WebhookHandler) Create(c *fiber.Ctx) error {
	sub, ok, err := parseBody[models.WebhookSubscription](c)
	if !ok {
		return err
	}
	sub.IsActive = true

	if err := h.repo.Create(c.UserContext(), &sub); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create webhook", err)
	}
	return utils.CreatedResponse(c, "Webhook created successfully", sub)
}

func (h *WebhookHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid webhook ID", err)
	}

	sub, ok, err := parseBody[models.WebhookSubscription](c)
	if !ok {
		return err
	}
	sub.ID = id

	if err := h.repo.Update(c.UserContext(), &sub); err != nil {
		return webhookError(c, err)
	}
	return utils.SuccessResponse(c, "Webhook updated successfully", sub)
}

func (h *WebhookHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid webhook ID", err)
	}

	if err := h.repo.Delete(c.UserContext(), id); err != nil {
		return webhookError(c, err)
	}
	return utils.SuccessResponse(c, "Webhook deleted successfully", nil)
}

func webhookError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repository.ErrSubscriptionNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Webhook not found", nil)
	}
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save webhook", err)
}
