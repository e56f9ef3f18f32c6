package main

import (
	"fmt"
	"net"

	"github.com/aretw0/sitepass/internal/cli"
	"github.com/aretw0/sitepass/internal/presentation/tui"
	httpAdapter "github.com/aretw0/sitepass/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts sitepass as an HTTP server exposing the conversation, induction and
maintenance checks as a JSON API, plus /metrics, /openapi.yaml and an /events stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}

		streams := httpAdapter.NewStreamManager(logger)
		app, err := cli.Bootstrap(cmd.Context(), cfg, logger, streams.Hooks())
		if err != nil {
			return err
		}
		defer app.Close()

		srv, err := cli.NewServer(app, streams)
		if err != nil {
			return err
		}

		ln, err := net.Listen("tcp", cfg.HTTP.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.HTTP.Addr, err)
		}

		if tui.IsTerminal(cmd.OutOrStdout()) {
			tui.PrintBanner(cmd.OutOrStdout())
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		if err := cli.Serve(ctx, app, srv, ln); err != nil {
			return err
		}
		if sig := ctx.Signal(); sig != nil {
			logger.Debug("Stopped by signal", "signal", sig.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides the configured http.addr)")
}
