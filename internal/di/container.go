package di

import (
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/okatyev/tg-digest/internal/config"
	"github.com/okatyev/tg-digest/internal/summarize"
	"github.com/okatyev/tg-digest/internal/telegram"
	"github.com/samber/do/v2"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	})

	do.Provide(injector, func(i do.Injector) (*summarize.Summarizer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		var remote summarize.Strategy
		if cfg.RemoteSummaryEnabled() {
			remote = summarize.NewRemote(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		}
		return summarize.New(remote, summarize.NewLocal()), nil
	})

	do.Provide(injector, func(i do.Injector) (*telegram.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return telegram.New(cfg), nil
	})

	// Only invoked when reposting was requested
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.RepostConfigured() {
			return nil, config.ErrMissingBotCredentials
		}
		b, err := bot.New(cfg.TGBotToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create telegram bot: %w", err)
		}
		return b, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	return injector.Shutdown()
}
