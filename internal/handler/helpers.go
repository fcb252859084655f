package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulavirtual/aula-api/internal/middleware"
	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/policy"
	"github.com/aulavirtual/aula-api/internal/service"
	"github.com/aulavirtual/aula-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

// currentActor builds the acting account from the locals left by the session
// middleware. Role and ownership checks only need the id and role.
func currentActor(c *fiber.Ctx) (models.User, bool) {
	id, okID := c.Locals("user_id").(uint)
	role, okRole := c.Locals("user_role").(string)
	if !okID || !okRole || id == 0 || !models.ValidRole(role) {
		return models.User{}, false
	}
	return models.User{ID: id, Role: role}, true
}

// respondError maps service and policy errors onto the JSON envelope.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var (
		denied           *policy.DeniedError
		validationErrors validator.ValidationErrors
	)

	switch {
	case errors.As(err, &denied):
		return utils.SendError(c, fiber.StatusForbidden, denied.Reason)
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrValidation):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, "email already registered")
	case errors.Is(err, service.ErrAccountNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "account not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrFileNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "file not found")
	case errors.Is(err, service.ErrExamNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "exam not found")
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	default:
		logger.Error().Err(err).Str("correlation_id", middleware.GetCorrelationID(c)).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
