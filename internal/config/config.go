package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	LogLevel  string
	LogFormat string

	Currency      string
	CurrencyScale int

	MidtransServerKey    string
	MidtransClientKey    string
	MidtransBaseURL      string
	PaymentWebhookSecret string
	PaymentExpiry        time.Duration

	ChatPollInterval   time.Duration
	RateLimitPerMinute int

	RedisAddr     string
	RedisPassword string

	MongoURI string
	MongoDB  string

	KafkaBrokers           []string
	KafkaNotificationTopic string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3PublicBaseURL string

	UploadDir        string
	UploadPublicPath string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not loaded", slog.String("error", err.Error()))
	}
	AppEnv = FromEnv()
}

// FromEnv builds a Config from the current process environment.
func FromEnv() Config {
	return Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		DatabaseURL:     getEnvOrDefault("DATABASE_URL", ""),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		RefreshTokenTTL: getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		Currency:      getEnvOrDefault("CURRENCY", "IDR"),
		CurrencyScale: getIntEnv("CURRENCY_SCALE", 2),

		MidtransServerKey:    getEnvOrDefault("MIDTRANS_SERVER_KEY", ""),
		MidtransClientKey:    getEnvOrDefault("MIDTRANS_CLIENT_KEY", ""),
		MidtransBaseURL:      getEnvOrDefault("MIDTRANS_BASE_URL", "https://app.sandbox.midtrans.com"),
		PaymentWebhookSecret: getEnvOrDefault("PAYMENT_WEBHOOK_SECRET", ""),
		PaymentExpiry:        getDurationEnv("PAYMENT_EXPIRY", 60, time.Minute),

		ChatPollInterval:   getDurationEnv("CHAT_POLL_INTERVAL", 2000, time.Millisecond),
		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 120),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		MongoURI: getEnvOrDefault("MONGO_URI", ""),
		MongoDB:  getEnvOrDefault("MONGO_DB", "craftmarket"),

		KafkaBrokers:           getListEnv("KAFKA_BROKERS"),
		KafkaNotificationTopic: getEnvOrDefault("KAFKA_NOTIFICATION_TOPIC", "marketplace.notifications"),

		S3Bucket:        getEnvOrDefault("S3_BUCKET", "custom-order-images"),
		S3Region:        getEnvOrDefault("S3_REGION", ""),
		S3Endpoint:      getEnvOrDefault("S3_ENDPOINT", ""),
		S3PublicBaseURL: getEnvOrDefault("S3_PUBLIC_BASE_URL", ""),

		UploadDir:        getEnvOrDefault("UPLOAD_DIR", "./public/uploads"),
		UploadPublicPath: getEnvOrDefault("UPLOAD_PUBLIC_PATH", "/public/uploads"),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
