// Command setwebhook points the Telegram bot at the deployed API.
//
// Usage: setwebhook https://mein-essen.example.com
package main

import (
	"fmt"
	"os"
	"strings"

	"mein-essen/internal/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2/log"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Please provide the public URL of the API.")
		fmt.Fprintln(os.Stderr, "Example: setwebhook https://mein-essen.example.com")
		os.Exit(1)
	}

	utils.LoadConfig()
	token := utils.GetConfig("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN not set")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	webhookURL := strings.TrimRight(os.Args[1], "/") + "/api/webhook"
	params := tgbotapi.Params{"url": webhookURL}
	if secret := utils.GetConfig("TELEGRAM_WEBHOOK_SECRET"); secret != "" {
		params["secret_token"] = secret
	}

	log.Infof("Setting webhook to: %s", webhookURL)
	resp, err := bot.MakeRequest("setWebhook", params)
	if err != nil {
		log.Fatalf("setWebhook failed: %v", err)
	}
	log.Infof("Response: ok=%v %s", resp.Ok, resp.Description)
}
