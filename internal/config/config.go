package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

var (
	ErrMissingAPICredentials = errors.New("TG_API_ID and TG_API_HASH environment variables are required")
	ErrMissingBotCredentials = errors.New("TG_BOT_TOKEN and TG_TARGET_CHAT_ID are required for reposting")
)

type Config struct {
	TGAPIID               int    `koanf:"tg_api_id"`
	TGAPIHash             string `koanf:"tg_api_hash"`
	TGSession             string `koanf:"tg_session"`
	TGPhone               string `koanf:"tg_phone"`
	TG2FAPassword         string `koanf:"tg_2fa_password"`
	TGBotToken            string `koanf:"tg_bot_token"`
	TGTargetChatID        string `koanf:"tg_target_chat_id"`
	OpenAIAPIKey          string `koanf:"openai_api_key"`
	OpenAIBaseURL         string `koanf:"openai_base_url"`
	OpenAIModel           string `koanf:"openai_model"`
	OutputDir             string `koanf:"output_dir"`
	MessageLimit          int    `koanf:"message_limit"`
	ChannelTimeoutSeconds int    `koanf:"channel_timeout_seconds"`
	HTTPAddr              string `koanf:"http_addr"`
}

// RemoteSummaryEnabled reports whether the remote strategy is configured
func (c *Config) RemoteSummaryEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// RepostConfigured reports whether bot credentials for reposting are present
func (c *Config) RepostConfigured() bool {
	return c.TGBotToken != "" && c.TGTargetChatID != ""
}

// ChannelTimeout returns the per-channel ingestion timeout
func (c *Config) ChannelTimeout() time.Duration {
	return time.Duration(c.ChannelTimeoutSeconds) * time.Second
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try to load config file from various formats
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values
	// TG_API_HASH -> tg_api_hash
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	// Defaults
	if !k.Exists("tg_session") {
		k.Set("tg_session", "tg_digest.session")
	}
	if !k.Exists("openai_base_url") {
		k.Set("openai_base_url", "https://api.openai.com/v1")
	}
	if !k.Exists("openai_model") {
		k.Set("openai_model", "gpt-4o-mini")
	}
	if !k.Exists("output_dir") {
		k.Set("output_dir", "output")
	}
	if !k.Exists("message_limit") {
		k.Set("message_limit", 50)
	}
	if !k.Exists("channel_timeout_seconds") {
		k.Set("channel_timeout_seconds", 30)
	}
	if !k.Exists("http_addr") {
		k.Set("http_addr", ":8080")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	return &cfg, nil
}

// ValidateForRun checks the credentials a digest run needs. Bot credentials
// are only required when reposting was requested.
func (c *Config) ValidateForRun(post bool) error {
	if c.TGAPIID == 0 || c.TGAPIHash == "" {
		return ErrMissingAPICredentials
	}
	if post && !c.RepostConfigured() {
		return ErrMissingBotCredentials
	}
	return nil
}
