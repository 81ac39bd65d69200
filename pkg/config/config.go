package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	PostgresHost		string
	PostgresPort		string
	PostgresUser		string
	PostgresPassword	string
	PostgresDB		string
	LineChannelSecret	string
	LineChannelToken	string
	OpenAIKey		string
	OpenAIModel		string
	OpenAIStream		bool
	StripeSecretKey		string
	StripePriceID		string
	OwnerLineID		string
	ServerPort		string
	HistoryWindow		int
	DailyFreeLimit		int
	BackendTimeoutSec	int
	Workers			int
	QueueSize		int
	UpsellURL		string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Не найден файл .env")
	}

	return &Config{
		PostgresHost:		getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:		getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:		getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:	getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:		getEnv("POSTGRES_DB", "linerelay"),
		LineChannelSecret:	getEnv("LINE_CHANNEL_SECRET", ""),
		LineChannelToken:	getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		OpenAIKey:		getEnv("OPENAI_KEY", ""),
		OpenAIModel:		getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIStream:		getEnv("OPENAI_STREAM", "false") == "true",
		StripeSecretKey:	getEnv("STRIPE_SECRET_KEY", ""),
		StripePriceID:		getEnv("SUBSCRIPTION_PRICE_ID", ""),
		OwnerLineID:		getEnv("OWNER_LINE_ID", ""),
		ServerPort:		getEnv("SERVER_PORT", "8080"),
		HistoryWindow:		getEnvInt("HISTORY_WINDOW", 10),
		DailyFreeLimit:		getEnvInt("DAILY_FREE_LIMIT", 5),
		BackendTimeoutSec:	getEnvInt("BACKEND_TIMEOUT_SEC", 20),
		Workers:		getEnvInt("WORKER_COUNT", 4),
		QueueSize:		getEnvInt("QUEUE_SIZE", 64),
		UpsellURL:		getEnv("UPSELL_URL", "https://line-login-3fbeac7c6978.herokuapp.com/"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logrus.Warnf("Некорректное значение %s=%q, используется %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
