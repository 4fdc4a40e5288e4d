package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/okatyev/tg-digest/internal/config"
	"github.com/okatyev/tg-digest/internal/di"
	"github.com/okatyev/tg-digest/internal/digest"
	"github.com/okatyev/tg-digest/internal/report"
	"github.com/okatyev/tg-digest/internal/repost"
	"github.com/okatyev/tg-digest/internal/summarize"
	"github.com/okatyev/tg-digest/internal/telegram"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		outputDir string
		limit     int
		post      bool
		rss       bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the digest and write the HTML report and JSON archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := di.Setup()
			if err != nil {
				return err
			}
			defer func() {
				if err := di.Shutdown(injector); err != nil {
					slog.Error("Error during shutdown", "error", err)
				}
			}()

			cfg := do.MustInvoke[*config.Config](injector)
			if cmd.Flags().Changed("output-dir") {
				cfg.OutputDir = outputDir
			}
			if cmd.Flags().Changed("limit") {
				cfg.MessageLimit = limit
			}
			if err := cfg.ValidateForRun(post); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return runDigest(ctx, injector, cfg, post, rss)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "output", "directory for the rendered digest files")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "max unread messages fetched per channel")
	cmd.Flags().BoolVar(&post, "post", false, "repost condensed summaries via the bot")
	cmd.Flags().BoolVar(&rss, "rss", false, "also write an RSS projection of the digest")

	return cmd
}

func runDigest(ctx context.Context, injector do.Injector, cfg *config.Config, post, rss bool) error {
	summarizer := do.MustInvoke[*summarize.Summarizer](injector)
	client := do.MustInvoke[*telegram.Client](injector)

	return client.Run(ctx, func(ctx context.Context, src digest.Source) error {
		assembler := digest.NewAssembler(src, summarizer, cfg.ChannelTimeout())
		d, err := assembler.Build(ctx, cfg.MessageLimit)
		if err != nil {
			return err
		}
		slog.Info("Digest assembled",
			"channels", len(d.Channels),
			"messages", d.MessageCount(),
			"failed_channels", d.FailedChannels())

		writer := report.NewWriter(cfg.OutputDir, rss)
		paths, writeErr := writer.Write(d)
		if writeErr != nil {
			// Partial render failures are reported but do not fail the run
			// as long as at least one artifact landed.
			slog.Error("Some artifacts failed to render", "error", writeErr)
			if paths.HTML == "" && paths.JSON == "" {
				return writeErr
			}
		}

		if post {
			// The artifacts are already on disk; a broken bot only costs
			// the repost, not the run.
			b, err := do.Invoke[*bot.Bot](injector)
			if err != nil {
				slog.Error("Repost skipped: telegram bot unavailable", "error", err)
				return nil
			}
			reposter := repost.NewReposter(repost.NewBotSender(b), cfg.TGTargetChatID)
			result := reposter.Repost(ctx, d)
			slog.Info("Reposted digest", "sent", result.Sent, "failed", result.Failed)
			for _, f := range result.Failures {
				slog.Error("Repost send failed", "channel_id", f.ChannelID, "error", f.Err)
			}
		}

		return nil
	})
}
