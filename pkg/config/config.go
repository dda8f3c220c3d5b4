package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. It is built once in main and
// passed by injection; there is no package-level instance.
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
		BaseURL string
	}

	// Database configuration
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		MaxConns int
	}

	// Redis configuration (invite-key usage bookkeeping)
	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	// Gemini configuration
	Gemini struct {
		APIKey      string
		TextModel   string
		ImageModel  string
		CallTimeout time.Duration
	}

	// Generation tuning for the character pipeline and conversation engine
	Generation struct {
		// ArticleCharBudget bounds how much article text is embedded in the
		// profile prompt
		ArticleCharBudget int
		// ExtractCharCap bounds the plain-text extract fetched from Wikipedia
		ExtractCharCap int
		// ChatHistoryWindow is the number of recent messages included as
		// conversational context
		ChatHistoryWindow int
	}

	// Blob storage for generated portraits
	Blob struct {
		Dir string
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}
}

// Load builds a Config from environment variables, reading .env if present.
func Load() *Config {
	godotenv.Load()

	cfg := &Config{}

	cfg.Server.Port = getEnvString("PORT", "8081")
	cfg.Server.Env = getEnvString("APP_ENV", "development")
	cfg.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)
	cfg.Server.BaseURL = getEnvString("BASE_URL", "http://localhost:"+cfg.Server.Port)

	cfg.Database.Host = getEnvString("DB_HOST", "localhost")
	cfg.Database.Port = getEnvString("DB_PORT", "5432")
	cfg.Database.User = getEnvString("DB_USER", "postgres")
	cfg.Database.Password = getEnvString("DB_PASSWORD", "postgres")
	cfg.Database.Name = getEnvString("DB_NAME", "wiki-character-chat")
	cfg.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)

	cfg.Redis.Addr = getEnvString("REDIS_URL", "localhost:6379")
	cfg.Redis.Password = getEnvString("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Gemini.APIKey = getEnvString("GEMINI_API_KEY", "")
	cfg.Gemini.TextModel = getEnvString("GEMINI_TEXT_MODEL", "gemini-2.5-flash")
	cfg.Gemini.ImageModel = getEnvString("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001")
	cfg.Gemini.CallTimeout = getEnvDuration("GEMINI_CALL_TIMEOUT", 60*time.Second)

	cfg.Generation.ArticleCharBudget = getEnvInt("ARTICLE_CHAR_BUDGET", 2000)
	cfg.Generation.ExtractCharCap = getEnvInt("EXTRACT_CHAR_CAP", 8000)
	cfg.Generation.ChatHistoryWindow = getEnvInt("CHAT_HISTORY_WINDOW", 10)

	cfg.Blob.Dir = getEnvString("PORTRAIT_DIR", "generated_images")

	cfg.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 5))
	cfg.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)
	cfg.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})

	cfg.Logging.Level = getEnvString("LOG_LEVEL", "info")
	cfg.Logging.Format = getEnvString("LOG_FORMAT", "json")

	return cfg
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
