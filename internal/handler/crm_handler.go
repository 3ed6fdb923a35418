package handler

import (
	"errors"
	"fmt"
	"time"

	"property-crm/internal/models"
	"property-crm/internal/service"
	"property-crm/internal/store"
	"property-crm/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// CRMHandler serves the operations that go beyond plain CRUD: tenant
// move-out, rent payments, late-fee settings and the property export.
type CRMHandler struct {
	store *store.Store
	rent  *service.RentService
}

func NewCRMHandler(s *store.Store, rent *service.RentService) *CRMHandler {
	return &CRMHandler{store: s, rent: rent}
}

func (h *CRMHandler) MoveOutTenant(c *fiber.Ctx) error {
	req, ok, err := parseBody[models.MoveOutRequest](c)
	if !ok {
		return err
	}

	tenant, err := h.store.MoveOutTenant(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return storeError(c, err, "Tenant")
	}
	return utils.SuccessResponse(c, "Tenant moved out successfully", tenant)
}

func (h *CRMHandler) RecordPayment(c *fiber.Ctx) error {
	req, ok, err := parseBody[models.PayRequest](c)
	if !ok {
		return err
	}

	payment, err := h.rent.RecordPayment(c.UserContext(), c.Params("id"), req)
	if errors.Is(err, service.ErrPaymentAlreadyPaid) {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Payment has already been recorded", nil)
	}
	if err != nil {
		return storeError(c, err, "Payment")
	}

	message := "Payment recorded successfully"
	if payment.LateFee.IsPositive() {
		message = fmt.Sprintf("Payment recorded with a late fee of %s", payment.LateFee.StringFixed(2))
	}
	return utils.SuccessResponse(c, message, payment)
}

func (h *CRMHandler) GetLateFeeSettings(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "Late fee settings retrieved successfully", h.store.Settings().LateFee)
}

func (h *CRMHandler) UpdateLateFeeSettings(c *fiber.Ctx) error {
	cfg, ok, err := parseBody[models.LateFeeConfig](c)
	if !ok {
		return err
	}

	settings := h.store.Settings()
	settings.LateFee = cfg
	if err := h.store.UpdateSettings(c.UserContext(), settings); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save late fee settings", err)
	}
	return utils.SuccessResponse(c, "Late fee settings updated successfully", cfg)
}

func (h *CRMHandler) ExportProperties(c *fiber.Ctx) error {
	out, err := service.ExportPropertiesCSV(store.All(h.store, store.Properties))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export properties", err)
	}

	exportFileName := fmt.Sprintf("properties_export_%s.csv", time.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, exportFileName))
	return c.SendString(out)
}
