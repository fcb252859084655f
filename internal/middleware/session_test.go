package middleware_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aulavirtual/aula-api/internal/middleware"
	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/session"
)

func newSessionApp(t *testing.T) (*fiber.App, *session.Store) {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	store := session.NewStore(client, "test-secret", time.Hour, zerolog.New(io.Discard))

	app := fiber.New()
	app.Get("/whoami", middleware.SessionProtected(store), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   c.Locals("user_id"),
			"user_role": c.Locals("user_role"),
		})
	})

	return app, store
}

func TestSessionProtectedAllowsValidToken(t *testing.T) {
	app, store := newSessionApp(t)

	token, err := store.Create(context.Background(), models.User{ID: 5, Role: models.RoleStudent})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSessionProtectedRejectsMissingHeader(t *testing.T) {
	app, _ := newSessionApp(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionProtectedRejectsRevokedToken(t *testing.T) {
	app, store := newSessionApp(t)

	token, err := store.Create(context.Background(), models.User{ID: 5, Role: models.RoleStudent})
	require.NoError(t, err)
	require.NoError(t, store.Destroy(context.Background(), token))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRoleGuardsGroup(t *testing.T) {
	app := fiber.New()
	app.Get("/admin",
		func(c *fiber.Ctx) error {
			c.Locals("user_role", c.Get("X-Test-Role"))
			return c.Next()
		},
		middleware.RequireRole(models.RoleAdmin),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Test-Role", models.RoleAdmin)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Test-Role", models.RoleStudent)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
