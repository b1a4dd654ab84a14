package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/fortune-handler/internal/httpserver"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local gateway",
		Long: `serve runs the local gateway. Requests to the fortune path are answered
by the in-process handler; everything else is forwarded to the configured
web-fleet targets, or to the handler when no targets are configured.

Examples:
    fortune serve
    fortune serve --addr :9000
    GATEWAY_TARGETS=http://localhost:8081,http://localhost:8082 fortune serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Gateway.Address = addr
			}

			log := newLogger(cmd.OutOrStdout(), cfg)
			ctx := cmd.Context()

			gw, err := buildGateway(cfg, log)
			if err != nil {
				log.Error("Failed to build gateway", slog.Any("err", err))
				return err
			}

			srv, err := httpserver.New(cfg.Gateway.Address, gw.router)
			if err != nil {
				log.Error("Failed to create server", slog.Any("err", err))
				return err
			}

			gw.collector.Start(ctx)
			go gw.checker.Run(ctx, gw.targets)

			log.Info("Gateway listening",
				slog.String("addr", srv.Addr()),
				slog.String("fortune_path", cfg.Gateway.FortunePath),
				slog.Int("targets", len(gw.targets)),
				slog.String("strategy", cfg.Strategy.Type))

			if err := srv.Run(ctx); err != nil {
				log.Error("Gateway stopped with error", slog.Any("err", err))
				return err
			}

			log.Info("Gateway shut down")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides gateway.address)")

	return cmd
}
