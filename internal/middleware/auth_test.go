package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"property-crm/internal/config"
	"property-crm/internal/models"
	"property-crm/internal/service"
	"property-crm/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthMiddleware(cfg), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    c.Locals("user_id"),
			"subscriber": service.SubscriberFromContext(c.UserContext()),
		})
	})
	app.Get("/admin", AuthMiddleware(cfg), AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, auth string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{AppEnv: "production", JWTSecret: "s3cret"}
	app := newApp(cfg)

	token, err := utils.GenerateAccessToken(models.User{ID: 7, Username: "kim", Role: "staff"}, "s3cret", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", "Token abc"))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", "Bearer "+service.DevTokenPrefix+"admin"))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/me", "Bearer "+token))
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/admin", "Bearer "+token))
}

func TestDevTokenInDevelopment(t *testing.T) {
	app := newApp(&config.Config{AppEnv: "development", JWTSecret: "s3cret"})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+service.DevTokenPrefix+"admin")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(1), body["user_id"])
	assert.Equal(t, "1", body["subscriber"])

	assert.Equal(t, fiber.StatusNoContent, get(t, app, "/admin", "Bearer "+service.DevTokenPrefix+"admin"))
}
