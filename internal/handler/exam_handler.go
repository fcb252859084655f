package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulavirtual/aula-api/internal/dto"
	"github.com/aulavirtual/aula-api/internal/service"
	"github.com/aulavirtual/aula-api/internal/utils"
)

// ExamHandler wires exam, question, option and answer routes.
type ExamHandler struct {
	service service.ExamService
	logger  zerolog.Logger
}

// NewExamHandler constructs the handler.
func NewExamHandler(service service.ExamService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		service: service,
		logger:  logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register attaches exam endpoints to the router groups.
func (h *ExamHandler) Register(courses fiber.Router, exams fiber.Router, questions fiber.Router, answers fiber.Router) {
	courses.Post("/:id/exams", h.createExam)
	exams.Get("/:id", h.getExam)
	exams.Post("/:id/questions", h.addQuestion)
	questions.Post("/:id/options", h.addOption)
	questions.Post("/:id/answers", h.submitAnswer)
	questions.Get("/:id/answers", h.listAnswers)
	answers.Get("", h.listMyAnswers)
}

func (h *ExamHandler) createExam(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.ExamCreateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "malformed request body")
	}

	exam, err := h.service.CreateExam(c.Context(), actor, courseID, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exam created", exam)
}

func (h *ExamHandler) getExam(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	examID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	exam, err := h.service.GetExam(c.Context(), actor, examID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "exam retrieved", exam)
}

func (h *ExamHandler) addQuestion(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	examID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.QuestionCreateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "malformed request body")
	}

	question, err := h.service.AddQuestion(c.Context(), actor, examID, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "question added", question)
}

func (h *ExamHandler) addOption(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	questionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.OptionCreateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "malformed request body")
	}

	option, err := h.service.AddOption(c.Context(), actor, questionID, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "option added", option)
}

func (h *ExamHandler) submitAnswer(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	questionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.AnswerSubmitRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "malformed request body")
	}

	answer, err := h.service.SubmitAnswer(c.Context(), actor, questionID, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "answer recorded", answer)
}

func (h *ExamHandler) listAnswers(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	questionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	answers, err := h.service.ListAnswers(c.Context(), actor, questionID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "answers retrieved", answers)
}

func (h *ExamHandler) listMyAnswers(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	answers, err := h.service.ListMyAnswers(c.Context(), actor)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "answers retrieved", answers)
}
