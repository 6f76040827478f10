package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("CHAT_POLL_INTERVAL", "")
	t.Setenv("PAYMENT_EXPIRY", "")
	t.Setenv("CURRENCY_SCALE", "")

	cfg := FromEnv()
	assert.Equal(t, 2*time.Second, cfg.ChatPollInterval)
	assert.Equal(t, time.Hour, cfg.PaymentExpiry)
	assert.Equal(t, 2, cfg.CurrencyScale)
	assert.Equal(t, "custom-order-images", cfg.S3Bucket)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CHAT_POLL_INTERVAL", "500")
	t.Setenv("ACCESS_TOKEN_TTL", "not-a-number")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg := FromEnv()
	assert.Equal(t, 500*time.Millisecond, cfg.ChatPollInterval)
	assert.Equal(t, 20*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestValidate(t *testing.T) {
	err := Config{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")

	require.NoError(t, Config{DatabaseURL: "postgres://x", JWTSecret: "s"}.Validate())
}
