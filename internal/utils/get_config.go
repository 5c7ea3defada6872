package utils

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server configuration
	Port              string `yaml:"PORT"`
	CORSOrigins       string `yaml:"CORS_ORIGINS"`
	RateLimitPerSec   string `yaml:"RATE_LIMIT_PER_SECOND"`
	LogFile           string `yaml:"LOG_FILE"`
	Timezone          string `yaml:"TIMEZONE"`
	WeeklyLimit       string `yaml:"WEEKLY_LIMIT"`
	JWTSecret         string `yaml:"JWT_SECRET"`
	ServiceName       string `yaml:"SERVICE_NAME"`
	MaxUploadSizeByte string `yaml:"MAX_UPLOAD_SIZE"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`

	// S3 compatible object storage
	S3Bucket    string `yaml:"S3_BUCKET"`
	S3Region    string `yaml:"S3_REGION"`
	S3Endpoint  string `yaml:"S3_ENDPOINT"`
	S3AccessKey string `yaml:"S3_ACCESS_KEY"`
	S3SecretKey string `yaml:"S3_SECRET_KEY"`
	S3PublicURL string `yaml:"S3_PUBLIC_URL"`

	// Model provider configuration
	AIProvider       string `yaml:"AI_PROVIDER"`
	AITimeoutSeconds string `yaml:"AI_TIMEOUT_SECONDS"`
	GeminiAPIKey     string `yaml:"GEMINI_API_KEY"`
	GeminiModel      string `yaml:"GEMINI_MODEL"`
	OpenAIAPIKey     string `yaml:"OPENAI_API_KEY"`
	OpenAIModel      string `yaml:"OPENAI_MODEL"`
	OpenAIBaseURL    string `yaml:"OPENAI_BASE_URL"`

	// Telegram relay
	TelegramBotToken      string `yaml:"TELEGRAM_BOT_TOKEN"`
	TelegramWebhookSecret string `yaml:"TELEGRAM_WEBHOOK_SECRET"`
	TelegramAllowedChats  string `yaml:"TELEGRAM_ALLOWED_CHAT_IDS"`
}

var (
	config     Config
	configOnce sync.Once
)

var defaults = map[string]string{
	"PORT":                  "3000",
	"CORS_ORIGINS":          "*",
	"RATE_LIMIT_PER_SECOND": "10",
	"LOG_FILE":              "./logs/app.log",
	"TIMEZONE":              "Europe/Berlin",
	"WEEKLY_LIMIT":          "210",
	"SERVICE_NAME":          "mein-essen-backend",
	"MAX_UPLOAD_SIZE":       "5242880",
	"DB_PORT":               "5432",
	"DB_SSLMODE":            "disable",
	"S3_REGION":             "eu-central-1",
	"AI_PROVIDER":           "openai",
	"AI_TIMEOUT_SECONDS":    "60",
	"GEMINI_MODEL":          "gemini-1.5-flash",
	"OPENAI_MODEL":          "gpt-4o",
	"OPENAI_BASE_URL":       "https://api.openai.com/v1",
}

// LoadConfig reads config.yaml, then .env, and lets environment variables
// override anything set in the file. Safe to call more than once.
func LoadConfig() {
	configOnce.Do(func() {
		file, err := os.ReadFile("config.yaml")
		if err != nil {
			log.Printf("Error reading YAML file: %s\n", err)
		} else if err := yaml.Unmarshal(file, &config); err != nil {
			log.Printf("Error parsing YAML file: %s\n", err)
		}

		_ = godotenv.Load()
	})
}

func (c *Config) fileValue(key string) string {
	switch key {
	case "PORT":
		return c.Port
	case "CORS_ORIGINS":
		return c.CORSOrigins
	case "RATE_LIMIT_PER_SECOND":
		return c.RateLimitPerSec
	case "LOG_FILE":
		return c.LogFile
	case "TIMEZONE":
		return c.Timezone
	case "WEEKLY_LIMIT":
		return c.WeeklyLimit
	case "JWT_SECRET":
		return c.JWTSecret
	case "SERVICE_NAME":
		return c.ServiceName
	case "MAX_UPLOAD_SIZE":
		return c.MaxUploadSizeByte
	case "DB_USER":
		return c.DBUser
	case "DB_NAME":
		return c.DBName
	case "DB_PASSWORD":
		return c.DBPassword
	case "DB_PORT":
		return c.DBPort
	case "DB_HOST":
		return c.DBHost
	case "DB_SSLMODE":
		return c.DBSSLMode
	case "S3_BUCKET":
		return c.S3Bucket
	case "S3_REGION":
		return c.S3Region
	case "S3_ENDPOINT":
		return c.S3Endpoint
	case "S3_ACCESS_KEY":
		return c.S3AccessKey
	case "S3_SECRET_KEY":
		return c.S3SecretKey
	case "S3_PUBLIC_URL":
		return c.S3PublicURL
	case "AI_PROVIDER":
		return c.AIProvider
	case "AI_TIMEOUT_SECONDS":
		return c.AITimeoutSeconds
	case "GEMINI_API_KEY":
		return c.GeminiAPIKey
	case "GEMINI_MODEL":
		return c.GeminiModel
	case "OPENAI_API_KEY":
		return c.OpenAIAPIKey
	case "OPENAI_MODEL":
		return c.OpenAIModel
	case "OPENAI_BASE_URL":
		return c.OpenAIBaseURL
	case "TELEGRAM_BOT_TOKEN":
		return c.TelegramBotToken
	case "TELEGRAM_WEBHOOK_SECRET":
		return c.TelegramWebhookSecret
	case "TELEGRAM_ALLOWED_CHAT_IDS":
		return c.TelegramAllowedChats
	default:
		return ""
	}
}

// GetConfig resolves key from the environment, then config.yaml, then the
// built-in default.
func GetConfig(key string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	if v := config.fileValue(key); v != "" {
		return v
	}
	return defaults[key]
}

func GetConfigInt(key string) int {
	v, err := strconv.Atoi(GetConfig(key))
	if err != nil {
		n, _ := strconv.Atoi(defaults[key])
		return n
	}
	return v
}
