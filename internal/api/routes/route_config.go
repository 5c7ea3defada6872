package routes

import (
	"mein-essen/domain"
	"mein-essen/internal/api/handlers"
	"mein-essen/internal/middleware"
	"mein-essen/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App            *fiber.App
	ServiceName    string
	ReceiptHandler handlers.ReceiptHandler
	BudgetHandler  handlers.BudgetHandler
	InsightHandler handlers.InsightHandler
	WebhookHandler handlers.WebhookHandler // nil when the bot is disabled
	WebhookSecret  string
	Middleware     middleware.Middleware
	JWTService     jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.Webhook()
	c.Receipts()
	c.Budget()
	c.Insights()
}

func (c *Config) GuestRoute() {
	serviceName := c.ServiceName
	c.App.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": serviceName})
	})
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": domain.MessageSuccessPing})
	})
}

func (c *Config) Webhook() {
	if c.WebhookHandler == nil {
		return
	}
	c.App.Post("/api/webhook", c.Middleware.WebhookSecretMiddleware(c.WebhookSecret), c.WebhookHandler.TelegramWebhook)
}

func (c *Config) Receipts() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)

	c.App.Post("/api/upload", auth, c.ReceiptHandler.UploadReceipt)
	c.App.Post("/api/analyze", auth, c.ReceiptHandler.AnalyzeReceipt)

	receipts := c.App.Group("/api/receipts", auth)
	receipts.Post("", c.ReceiptHandler.SaveReceipt)
	receipts.Get("", c.ReceiptHandler.GetReceipts)
	receipts.Get("/:id", c.ReceiptHandler.GetReceiptDetails)
}

func (c *Config) Budget() {
	c.App.Get("/api/budget", c.Middleware.AuthMiddleware(c.JWTService), c.BudgetHandler.GetBudget)
}

func (c *Config) Insights() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)

	c.App.Post("/api/plan", auth, c.InsightHandler.Plan)
	c.App.Post("/api/analytics", auth, c.InsightHandler.Analytics)
	c.App.Post("/api/chat", auth, c.InsightHandler.Chat)
}
