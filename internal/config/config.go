package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")
	ErrInvalid       = errors.New("invalid configuration")
)

// Config — окружение процесса (.env + переменные).
type Config struct {
	OpenAIKey     string
	OpenAIBaseURL string

	LogLevel string
	LogFile  string

	ProfileFile string
	RulesFile   string
	OutputDir   string

	// опционально: журнал запусков в Postgres
	DatabaseURL string

	// опционально: копия артефактов в S3
	S3 S3Config

	// опционально: уведомления о падениях в Telegram
	TelegramToken  string
	TelegramChatID int64

	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Secure    bool
}

func (s S3Config) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// Load читает окружение. Ключ OpenAI здесь не обязателен:
// в интерактивном режиме его можно ввести руками.
func Load() (*Config, error) {
	cfg := &Config{
		OpenAIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),

		LogLevel: getEnvString("LOG_LEVEL", "info"),
		LogFile:  getEnvString("LOG_FILE", "audio_processor.log"),

		ProfileFile: getEnvString("PROFILE_FILE", "user_config.yaml"),
		RulesFile:   getEnvString("TEXT_RULES_FILE", "text_rules.yaml"),
		OutputDir:   os.Getenv("OUTPUT_DIR"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
			Secure:    getEnvBool("S3_SECURE", true),
		},

		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: getEnvInt64("TELEGRAM_ADMIN_CHAT_ID", 0),

		MaxAttempts: getEnvInt("MAX_ATTEMPTS", DefaultMaxAttempts),
		BackoffBase: getEnvDuration("BACKOFF_BASE", DefaultBackoffBase),
		BackoffMax:  getEnvDuration("BACKOFF_MAX", DefaultBackoffMax),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("%w: LOG_LEVEL must be one of: debug, info, warn, error", ErrInvalid)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: MAX_ATTEMPTS must be at least 1", ErrInvalid)
	}
	if c.BackoffBase <= 0 {
		return fmt.Errorf("%w: BACKOFF_BASE must be positive", ErrInvalid)
	}
	if c.BackoffMax < c.BackoffBase {
		return fmt.Errorf("%w: BACKOFF_MAX must not be less than BACKOFF_BASE", ErrInvalid)
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("%w: TELEGRAM_ADMIN_CHAT_ID is required with TELEGRAM_BOT_TOKEN", ErrInvalid)
	}
	return nil
}

// RequireAPIKey — для неинтерактивных команд ключ обязателен.
func (c *Config) RequireAPIKey() error {
	if c.OpenAIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// === env helpers ===

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
