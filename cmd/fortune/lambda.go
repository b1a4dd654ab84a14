package main

import (
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/angeloszaimis/fortune-handler/internal/albevent"
)

func newLambdaCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Handle ALB target group events in the Lambda runtime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			log := newLogger(cmd.OutOrStdout(), cfg)
			h := newFortuneHandler(cfg, log)

			_, prefixed := h.Prefix()
			log.Info("Starting Lambda handler",
				slog.String("endpoint", cfg.Fortune.Endpoint),
				slog.Bool("prefixed", prefixed))

			lambda.StartWithOptions(albevent.LambdaHandler(h, log), lambda.WithContext(cmd.Context()))
			return nil
		},
	}
}
