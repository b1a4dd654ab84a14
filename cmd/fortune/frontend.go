package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/fortune-handler/internal/frontend"
	"github.com/angeloszaimis/fortune-handler/internal/httpserver"
)

func newFrontendCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "frontend",
		Short: "Run a web-fleet server serving the fortune page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Frontend.Address = addr
			}

			log := newLogger(cmd.OutOrStdout(), cfg)

			srv, err := httpserver.New(cfg.Frontend.Address, frontend.Handler(log))
			if err != nil {
				log.Error("Failed to create server", slog.Any("err", err))
				return err
			}

			log.Info("Frontend listening", slog.String("addr", srv.Addr()))
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides frontend.address)")

	return cmd
}
