package config

import (
	"os"
	"strconv"

	"trail_miniapp/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	// Telegram bot identity; the referral link embeds both.
	BotToken        string
	BotUsername     string
	WebAppShortName string

	// Redis for the rate limiter. Empty addr disables it (fail-open).
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit          int
	APIRateWindowSeconds  int
	AuthRateLimit         int
	AuthRateWindowSeconds int

	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment (.env supported).
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	botUsername := os.Getenv("BOT_USERNAME")
	if botUsername == "" {
		botUsername = "TrailCrypto_Bot"
	}

	shortName := os.Getenv("WEBAPP_SHORT_NAME")
	if shortName == "" {
		shortName = "app"
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	return &Config{
		AppPort:         port,
		DatabaseURL:     dbURL,
		JWTSecret:       jwtSecret,
		BotToken:        botToken,
		BotUsername:     botUsername,
		WebAppShortName: shortName,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		APIRateLimit:          envInt("API_RATE_LIMIT", 30),
		APIRateWindowSeconds:  envInt("API_RATE_WINDOW_SECONDS", 60),
		AuthRateLimit:         envInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindowSeconds: envInt("AUTH_RATE_WINDOW_SECONDS", 60),

		LogLevel: envDefault("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
