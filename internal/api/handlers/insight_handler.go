package handlers

import (
	"mein-essen/domain"
	"mein-essen/internal/api/presenters"
	"mein-essen/pkg/insight"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	InsightHandler interface {
		Plan(c *fiber.Ctx) error
		Analytics(c *fiber.Ctx) error
		Chat(c *fiber.Ctx) error
	}

	insightHandler struct {
		insightService insight.InsightService
		validator      *validator.Validate
	}
)

func NewInsightHandler(insightService insight.InsightService, validator *validator.Validate) InsightHandler {
	return &insightHandler{
		insightService: insightService,
		validator:      validator,
	}
}

func (h *insightHandler) Plan(c *fiber.Ctx) error {
	req := new(domain.PlanRequest)

	// wishes are optional, so an empty body is fine
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedPlan, err)
	}

	res, err := h.insightService.Plan(c.UserContext(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFor(err), domain.MessageFailedPlan, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessPlan)
}

func (h *insightHandler) Analytics(c *fiber.Ctx) error {
	res, err := h.insightService.Analytics(c.UserContext())
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFor(err), domain.MessageFailedAnalytics, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessAnalytics)
}

func (h *insightHandler) Chat(c *fiber.Ctx) error {
	req := new(domain.ChatRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedChat, err)
	}

	res, err := h.insightService.Chat(c.UserContext(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFor(err), domain.MessageFailedChat, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessChat)
}
