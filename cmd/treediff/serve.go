package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/treediff-dev/treediff/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		addr    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diff server",
		Long: `Run the HTTP/WebSocket diff server.

Endpoints:
  POST /v1/diff     diff two documents in one shot
  POST /v1/publish  publish a new version of a named document
  GET  /ws?doc=...  subscribe to binary patch frames for a document
  GET  /metrics     Prometheus metrics
  GET  /healthz     liveness probe

Examples:
  treediff serve
  treediff serve --addr=:9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))

			return server.New(&server.Config{Address: addr}).Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}
