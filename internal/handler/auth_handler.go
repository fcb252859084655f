package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulavirtual/aula-api/internal/dto"
	"github.com/aulavirtual/aula-api/internal/middleware"
	"github.com/aulavirtual/aula-api/internal/service"
	"github.com/aulavirtual/aula-api/internal/utils"
)

// AuthHandler wires login and logout routes.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the public auth endpoints to the router group. The
// limiter guards the login route alone so logout is never throttled with it.
func (h *AuthHandler) Register(router fiber.Router, limit fiber.Handler) {
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}
	router.Post("/login", limit, h.login)
}

// RegisterProtected attaches the endpoints that require a session.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Post("/logout", h.logout)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	payload := dto.LoginRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "malformed request body")
	}

	response, err := h.service.Login(c.Context(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "login succeeded", response)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	token := middleware.BearerToken(c)
	if err := h.service.Logout(c.Context(), token); err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "logout succeeded", nil)
}
