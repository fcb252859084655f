package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/aulavirtual/aula-api/internal/middleware"
)

func newRateLimitApp(limit fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ProxyHeader: "X-Forwarded-For"})
	app.Post("/login", limit, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return app
}

func rateLimitedRequest(t *testing.T, app *fiber.App, ip string) int {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Forwarded-For", ip)

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRateLimitKeysAnonymousClientsByIP(t *testing.T) {
	app := newRateLimitApp(middleware.RateLimit("login", 2, time.Minute))

	require.Equal(t, fiber.StatusOK, rateLimitedRequest(t, app, "10.0.0.1"))
	require.Equal(t, fiber.StatusOK, rateLimitedRequest(t, app, "10.0.0.1"))
	require.Equal(t, fiber.StatusTooManyRequests, rateLimitedRequest(t, app, "10.0.0.1"))

	// Exhausting one client's budget must not touch another client's.
	require.Equal(t, fiber.StatusOK, rateLimitedRequest(t, app, "10.0.0.2"))
}

func TestRateLimitKeysSessionsByAccount(t *testing.T) {
	app := fiber.New()
	app.Post("/action",
		func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(c.QueryInt("user")))
			return c.Next()
		},
		middleware.RateLimit("action", 1, time.Minute),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/action?user="+user, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusOK, send("7"))
	require.Equal(t, fiber.StatusTooManyRequests, send("7"))
	require.Equal(t, fiber.StatusOK, send("8"))
}
