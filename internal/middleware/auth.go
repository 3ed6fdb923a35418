package middleware

import (
	"strconv"
	"strings"

	"property-crm/internal/config"
	"property-crm/internal/service"
	"property-crm/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware accepts a Bearer JWT, or a dev token when running in
// development. The authenticated user id also becomes the webhook subscriber
// for events emitted while handling the request.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authorization header is required", nil)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid authorization header format", nil)
		}

		token := parts[1]

		if cfg.IsDevelopment() && strings.HasPrefix(token, service.DevTokenPrefix) {
			dev := service.DevUser()
			setIdentity(c, dev.ID, dev.Username, dev.Role)
			return c.Next()
		}

		claims, err := utils.ValidateToken(token, cfg.JWTSecret)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token", nil)
		}

		setIdentity(c, claims.UserID, claims.Username, claims.Role)
		return c.Next()
	}
}

func setIdentity(c *fiber.Ctx, userID int, username, role string) {
	c.Locals("user_id", userID)
	c.Locals("username", username)
	c.Locals("role", role)
	c.SetUserContext(service.WithSubscriber(c.UserContext(), strconv.Itoa(userID)))
}

func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("role") != "admin" {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Admin access required", nil)
		}
		return c.Next()
	}
}
