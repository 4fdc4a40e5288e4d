package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TG_API_ID", "12345")
	t.Setenv("TG_API_HASH", "abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.TGAPIID)
	assert.Equal(t, "abcdef", cfg.TGAPIHash)
	assert.Equal(t, "tg_digest.session", cfg.TGSession)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, 50, cfg.MessageLimit)
	assert.Equal(t, 30*time.Second, cfg.ChannelTimeout())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TG_API_ID", "12345")
	t.Setenv("TG_API_HASH", "abcdef")
	t.Setenv("OUTPUT_DIR", "/tmp/digests")
	t.Setenv("MESSAGE_LIMIT", "10")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("TG_2FA_PASSWORD", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/digests", cfg.OutputDir)
	assert.Equal(t, 10, cfg.MessageLimit)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, "s3cret", cfg.TG2FAPassword)
}

func TestRemoteSummaryToggle(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.RemoteSummaryEnabled())

	cfg.OpenAIAPIKey = "sk-test"
	assert.True(t, cfg.RemoteSummaryEnabled())
}

func TestValidateForRun(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.ValidateForRun(false), ErrMissingAPICredentials)

	cfg.TGAPIID = 1
	cfg.TGAPIHash = "hash"
	assert.NoError(t, cfg.ValidateForRun(false))

	// Bot credentials only matter when posting
	assert.ErrorIs(t, cfg.ValidateForRun(true), ErrMissingBotCredentials)

	cfg.TGBotToken = "token"
	assert.ErrorIs(t, cfg.ValidateForRun(true), ErrMissingBotCredentials)

	cfg.TGTargetChatID = "-100123"
	assert.NoError(t, cfg.ValidateForRun(true))
}
