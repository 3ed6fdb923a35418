package router

import (
	"errors"

	"property-crm/internal/config"
	"property-crm/internal/store"
	"property-crm/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Dependencies are the long-lived components cmd/web builds before routing.
// DB is nil when MySQL is unavailable; account, webhook, billing and import
// history endpoints then degrade.
type Dependencies struct {
	Config *config.Config
	Store  *store.Store
	DB     *sqlx.DB
	Events store.EventSink
	Logger *logrus.Logger
}

func Setup(app *fiber.App, deps Dependencies) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"app":      deps.Config.AppName,
			"database": deps.DB != nil,
		})
	})

	// Billing feed read by the analytics dashboard
	setupBillingRoutes(app.Group("/api"), deps)

	api := app.Group("/api/v1")
	SetupAPIRoutes(api, deps)
}

// ErrorHandler renders errors that escape handlers in the JSON envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		utils.ComponentLogger("http").WithError(err).WithField("path", c.Path()).Error("Unhandled error")
	}

	return utils.ErrorResponse(c, code, message, nil)
}
