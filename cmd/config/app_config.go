package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"mein-essen/internal/api/handlers"
	"mein-essen/internal/api/presenters"
	"mein-essen/internal/api/routes"
	"mein-essen/internal/middleware"
	"mein-essen/internal/utils"
	"mein-essen/internal/utils/storage"
	"mein-essen/pkg/ai"
	"mein-essen/pkg/budget"
	"mein-essen/pkg/insight"
	"mein-essen/pkg/jwt"
	"mein-essen/pkg/receipt"
	"mein-essen/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	validator := utils.Validate

	maxUpload := int64(utils.GetConfigInt("MAX_UPLOAD_SIZE"))
	app := fiber.New(fiber.Config{
		AppName:           utils.GetConfig("SERVICE_NAME"),
		EnablePrintRoutes: true,
		// leave room for multipart framing around a maximum-size image
		BodyLimit:    int(maxUpload) + 1<<20,
		ErrorHandler: presenters.ErrorHandler,
	})
	middlewares := middleware.NewMiddleware(utils.GetConfig("CORS_ORIGINS"))

	// setting up logging and limiter
	app.Use(recover.New())

	logOutput := io.Writer(os.Stdout)
	if logFile := utils.GetConfig("LOG_FILE"); logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), os.ModePerm); err != nil {
			log.Fatalf("error creating logs directory: %v", err)
		}
		file, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("error opening file: %v", err)
		}
		logOutput = io.MultiWriter(os.Stdout, file)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   utils.GetConfig("TIMEZONE"),
		Output:     logOutput,
	}))

	if rate := utils.GetConfigInt("RATE_LIMIT_PER_SECOND"); rate > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        rate,
			Expiration: 1 * time.Second,
		}))
	}

	weeklyLimit, err := decimal.NewFromString(utils.GetConfig("WEEKLY_LIMIT"))
	if err != nil {
		return nil, err
	}
	location := budget.LoadLocation(utils.GetConfig("TIMEZONE"))

	// utils
	s3 := storage.NewAwsS3()
	model := ai.NewClient(ai.ConfigFromEnv())

	// Repository
	receiptRepository := receipt.NewReceiptRepository(db)

	// Service
	jwtService := jwt.NewJWTService(utils.GetConfig("JWT_SECRET"))
	receiptService := receipt.NewReceiptService(receiptRepository, s3, model, maxUpload)
	budgetService := budget.NewBudgetService(receiptRepository, weeklyLimit, location)
	insightService := insight.NewInsightService(receiptRepository, budgetService, model)

	// Handler
	receiptHandler := handlers.NewReceiptHandler(receiptService, validator)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	insightHandler := handlers.NewInsightHandler(insightService, validator)

	var webhookHandler handlers.WebhookHandler
	if token := utils.GetConfig("TELEGRAM_BOT_TOKEN"); token != "" {
		allowedChats, err := telegram.ParseChatIDs(utils.GetConfig("TELEGRAM_ALLOWED_CHAT_IDS"))
		if err != nil {
			return nil, err
		}
		if len(allowedChats) == 0 {
			log.Warn("TELEGRAM_ALLOWED_CHAT_IDS is empty, the bot will refuse every chat")
		}

		bot, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			log.Warnf("telegram bot disabled: %v", err)
		} else {
			log.Infof("telegram bot authorized as @%s", bot.Self.UserName)
			botService := telegram.NewBotService(bot, allowedChats, budgetService, insightService)
			webhookHandler = handlers.NewWebhookHandler(botService)
		}
	}

	// routes
	routesConfig := routes.Config{
		App:            app,
		ServiceName:    utils.GetConfig("SERVICE_NAME"),
		ReceiptHandler: receiptHandler,
		BudgetHandler:  budgetHandler,
		InsightHandler: insightHandler,
		WebhookHandler: webhookHandler,
		WebhookSecret:  utils.GetConfig("TELEGRAM_WEBHOOK_SECRET"),
		Middleware:     middlewares,
		JWTService:     jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
