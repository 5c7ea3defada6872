package handlers

import (
	"encoding/json"

	"mein-essen/domain"
	"mein-essen/internal/api/presenters"
	"mein-essen/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type (
	WebhookHandler interface {
		TelegramWebhook(c *fiber.Ctx) error
	}

	webhookHandler struct {
		botService telegram.BotService
	}
)

func NewWebhookHandler(botService telegram.BotService) WebhookHandler {
	return &webhookHandler{botService: botService}
}

// TelegramWebhook acknowledges every parseable update with 200 so Telegram
// does not redeliver it; command failures are reported to the chat instead.
func (h *webhookHandler) TelegramWebhook(c *fiber.Ctx) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.botService.HandleUpdate(c.UserContext(), update); err != nil {
		log.Errorf("telegram update %d: %v", update.UpdateID, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
