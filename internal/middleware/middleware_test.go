package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mein-essen/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(t *testing.T, secret string) (*fiber.App, jwt.JWTService) {
	t.Helper()

	svc := jwt.NewJWTService(secret)
	app := fiber.New()
	app.Get("/me", NewMiddleware("").AuthMiddleware(svc), func(c *fiber.Ctx) error {
		owner, _ := c.Locals("owner_id").(string)
		return c.SendString(owner)
	})
	return app, svc
}

func status(t *testing.T, app *fiber.App, authorization string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddlewareDisabled(t *testing.T) {
	app, _ := protected(t, "")
	assert.Equal(t, http.StatusOK, status(t, app, ""))
}

func TestAuthMiddleware(t *testing.T) {
	app, svc := protected(t, "s3cret")

	assert.Equal(t, http.StatusUnauthorized, status(t, app, ""))
	assert.Equal(t, http.StatusUnauthorized, status(t, app, "Basic Zm9vOmJhcg=="))
	assert.Equal(t, http.StatusUnauthorized, status(t, app, "Bearer garbage"))

	token, err := svc.GenerateToken("household", jwt.RoleOwner, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status(t, app, "Bearer "+token))
}

func TestWebhookSecretMiddleware(t *testing.T) {
	app := fiber.New()
	app.Post("/hook", NewMiddleware("").WebhookSecretMiddleware("hook"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/hook", nil)
	req.Header.Set(TelegramSecretHeader, "wrong")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/hook", nil)
	req.Header.Set(TelegramSecretHeader, "hook")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
