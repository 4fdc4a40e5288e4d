package main

import (
	"log/slog"

	"github.com/okatyev/tg-digest/internal/config"
	"github.com/okatyev/tg-digest/internal/di"
	"github.com/okatyev/tg-digest/internal/serve"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		addr      string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the most recent rendered digest over HTTP",
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
			if cmd.Flags().Changed("addr") {
				cfg.HTTPAddr = addr
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.OutputDir = outputDir
			}

			server := serve.New(cfg.HTTPAddr, cfg.OutputDir)
			server.SetLogger(slog.Default())
			return server.Start()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "output", "directory the digest files were written to")

	return cmd
}
