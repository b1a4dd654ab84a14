// Command fortune serves the fortune request handler.
//
// Usage:
//
//	fortune lambda       Run as an ALB target in the Lambda runtime
//	fortune serve        Run the local gateway (listener, target group, handler)
//	fortune frontend     Run a web-fleet server
//	fortune invoke       Call the handler once and print the ALB response
//	fortune loadtest     Send concurrent requests to a gateway
//	fortune version      Show version
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/fortune-handler/config"
	"github.com/angeloszaimis/fortune-handler/internal/fortune"
	"github.com/angeloszaimis/fortune-handler/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCmd()

	// The Lambda runtime starts the binary without arguments.
	if len(os.Args) == 1 && os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		rootCmd.SetArgs([]string{"lambda"})
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "fortune",
		Short: "Serve fortunes from a third-party fortune API",
		Long: `fortune fetches a fortune from a third-party API and returns it as JSON,
optionally prefixed with MSG_PREFIX.

It runs as an ALB target in the Lambda runtime, or locally behind a gateway
that routes /fortune to the handler and everything else to a web fleet.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config file (default: ./config/config.yaml or ./config.yaml)")

	rootCmd.AddCommand(
		newLambdaCmd(&configPath),
		newServeCmd(&configPath),
		newFrontendCmd(&configPath),
		newInvokeCmd(&configPath),
		newLoadtestCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return logger.New(w, cfg.Logging.Level, false, cfg.Server.Environment)
}

func newFortuneHandler(cfg *config.Config, log *slog.Logger) *fortune.Handler {
	client := fortune.NewClient(cfg.Fortune.Endpoint, config.Duration(cfg.Fortune.Timeout))
	return fortune.NewHandler(log, client, cfg.Fortune.Prefix)
}
