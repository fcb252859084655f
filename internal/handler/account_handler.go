package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulavirtual/aula-api/internal/dto"
	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/service"
	"github.com/aulavirtual/aula-api/internal/utils"
)

// AccountHandler wires the admin-facing account provisioning routes.
type AccountHandler struct {
	service service.AccountService
	logger  zerolog.Logger
}

// NewAccountHandler constructs the handler.
func NewAccountHandler(service service.AccountService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger.With().Str("component", "account_handler").Logger(),
	}
}

// Register attaches account endpoints to the router group.
func (h *AccountHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
}

func (h *AccountHandler) create(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	payload := dto.AccountCreateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "malformed request body")
	}

	account, err := h.service.Register(c.Context(), actor, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", account)
}

func (h *AccountHandler) list(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	role := c.Query("role", models.RoleStudent)
	accounts, err := h.service.ListByRole(c.Context(), actor, role)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "accounts retrieved", accounts)
}
