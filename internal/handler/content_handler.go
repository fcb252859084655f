package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulavirtual/aula-api/internal/service"
	"github.com/aulavirtual/aula-api/internal/utils"
)

// ContentHandler wires course file upload and deletion routes.
type ContentHandler struct {
	service service.ContentService
	logger  zerolog.Logger
}

// NewContentHandler constructs the handler.
func NewContentHandler(service service.ContentService, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		service: service,
		logger:  logger.With().Str("component", "content_handler").Logger(),
	}
}

// Register attaches content endpoints to the course router group.
func (h *ContentHandler) Register(courses fiber.Router, files fiber.Router) {
	courses.Get("/:id/files", h.list)
	courses.Post("/:id/files", h.upload)
	files.Delete("/:id", h.delete)
}

func (h *ContentHandler) list(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	files, err := h.service.ListByCourse(c.Context(), actor, courseID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "files retrieved", files)
}

func (h *ContentHandler) upload(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "content file is required")
	}

	uploaded, err := h.service.Upload(c.Context(), actor, courseID, file)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "content uploaded", uploaded)
}

func (h *ContentHandler) delete(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	fileID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), actor, fileID); err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "content deleted", fiber.Map{"id": fileID})
}
