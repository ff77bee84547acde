package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr string
	AppBaseURL string
	GinMode    string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	SessionSecret string

	MailProvider string
	MailFrom     string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	StorageBackend  string
	GCSBucket       string
	GCSCredentials  string
	LocalStorageDir string

	OpenAIAPIKey string

	DirectoryCacheTTL time.Duration
}

func Load() *Config {
	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),

		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "taskhub"),
		DBPassword: getEnv("DB_PASSWORD", "taskhub"),
		DBName:     getEnv("DB_NAME", "taskhub"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),

		MailProvider: getEnv("MAIL_PROVIDER", ""),
		MailFrom:     getEnv("MAIL_FROM", "Task Hub <noreply@taskhub.local>"),
		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		StorageBackend:  getEnv("STORAGE_BACKEND", "local"),
		GCSBucket:       getEnv("GCS_BUCKET", ""),
		GCSCredentials:  getEnv("GCS_CREDENTIALS_FILE", ""),
		LocalStorageDir: getEnv("LOCAL_STORAGE_DIR", "data/uploads"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		DirectoryCacheTTL: getEnvDuration("DIRECTORY_CACHE_TTL", 5*time.Minute),
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
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
