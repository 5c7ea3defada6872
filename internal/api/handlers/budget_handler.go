package handlers

import (
	"mein-essen/domain"
	"mein-essen/internal/api/presenters"
	"mein-essen/pkg/budget"

	"github.com/gofiber/fiber/v2"
)

type (
	BudgetHandler interface {
		GetBudget(c *fiber.Ctx) error
	}

	budgetHandler struct {
		budgetService budget.BudgetService
	}
)

func NewBudgetHandler(budgetService budget.BudgetService) BudgetHandler {
	return &budgetHandler{budgetService: budgetService}
}

func (h *budgetHandler) GetBudget(c *fiber.Ctx) error {
	res, err := h.budgetService.GetBudget(c.UserContext())
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFor(err), domain.MessageFailedGetBudget, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetBudget)
}
