package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/fortune-handler/internal/loadgen"
)

func newLoadtestCmd() *cobra.Command {
	var opts loadgen.Options

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Send concurrent requests to a gateway and report the distribution",
		Long: `loadtest sends GET requests with a pool of workers and prints a JSON report
with per-target counts, status codes and latency percentiles.

Examples:
    fortune loadtest --url http://localhost:8080/ --requests 1000 --concurrency 20
    fortune loadtest --url http://localhost:8080/fortune --requests 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := loadgen.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding report: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "http://localhost:8080/", "Gateway URL")
	cmd.Flags().IntVarP(&opts.Requests, "requests", "n", 100, "Total number of requests")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 10, "Number of concurrent workers")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "Per-request timeout")

	return cmd
}
