package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/fortune-handler/internal/albevent"
	"github.com/angeloszaimis/fortune-handler/internal/fortune"
)

func newInvokeCmd(configPath *string) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Call the handler once and print the response",
		Long: `invoke calls the fortune API once through the handler and prints the
response as the ALB target group response JSON. Logs go to stderr.

Examples:
    fortune invoke
    MSG_PREFIX="Your fortune:" fortune invoke --raw`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			log := newLogger(cmd.ErrOrStderr(), cfg)
			h := newFortuneHandler(cfg, log)

			res := h.Handle(cmd.Context(), fortune.Request{
				HTTPMethod: http.MethodGet,
				Path:       cfg.Gateway.FortunePath,
			})

			if raw {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), res.Body)
				return err
			}

			out, err := json.MarshalIndent(albevent.ToTargetGroupResponse(res), "", "  ")
			if err != nil {
				return fmt.Errorf("encoding response: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the response body")

	return cmd
}
