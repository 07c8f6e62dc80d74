package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_LOG_LEVEL"

	// 环境变量未设置时，应该返回默认值
	t.Setenv(key, "")
	assert.Equal(t, "info", getEnv(key, "info"))

	// 环境变量设置后，应优先返回环境变量
	t.Setenv(key, "debug")
	assert.Equal(t, "debug", getEnv(key, "info"))
}

func TestLoadReadsCredentials(t *testing.T) {
	t.Setenv("SENDER_EMAIL", "me@example.com")
	t.Setenv("SENDER_PASSWORD", "app-pass")
	t.Setenv("RECEIVER_EMAIL", "you@example.com")
	t.Setenv("APP_PORT", "")
	t.Setenv("POSTGRES_DSN", "")

	cfg := Load()
	require.NotNil(t, cfg)
	assert.Equal(t, "me@example.com", cfg.SenderEmail)
	assert.Equal(t, "app-pass", cfg.SenderPassword)
	assert.Equal(t, "you@example.com", cfg.ReceiverEmail)
	assert.False(t, cfg.APIEnabled())
	assert.False(t, cfg.JournalEnabled())
}

func TestLoadCompiledInConstants(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "smtp.gmail.com", cfg.SMTPHost)
	assert.Equal(t, "465", cfg.SMTPPort)
	assert.Equal(t, "11:00", cfg.DailyAt)
	assert.Equal(t, PollInterval, cfg.PollInterval)
	assert.Equal(t, FetchTimeout, cfg.FetchTimeout)
	assert.Equal(t, "Mozilla/5.0", cfg.UserAgent)
}

func TestLoadMissingCredentialsAreNotValidated(t *testing.T) {
	t.Setenv("SENDER_EMAIL", "")
	t.Setenv("SENDER_PASSWORD", "")
	t.Setenv("RECEIVER_EMAIL", "")

	cfg := Load()
	assert.Empty(t, cfg.SenderEmail)
	assert.Empty(t, cfg.ReceiverEmail)
}
