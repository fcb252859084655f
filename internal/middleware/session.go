package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aulavirtual/aula-api/internal/session"
	"github.com/aulavirtual/aula-api/internal/utils"
)

// SessionProtected returns a middleware that resolves the current account
// from the bearer session token. Unauthenticated requests are rejected.
func SessionProtected(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		sess, err := store.Resolve(c.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrSessionInvalid) {
				return utils.SendError(c, fiber.StatusUnauthorized, "session invalid or expired")
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}

		c.Locals("user_id", sess.UserID)
		c.Locals("user_role", sess.Role)
		c.Locals("session_token", token)

		return c.Next()
	}
}

// BearerToken extracts the session token from the Authorization header.
func BearerToken(c *fiber.Ctx) string {
	return bearerToken(c)
}

func bearerToken(c *fiber.Ctx) string {
	authorization := c.Get("Authorization")
	const bearer = "Bearer "
	if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
		return ""
	}
	return strings.TrimSpace(authorization[len(bearer):])
}
