package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/desktop-runner/internal/observability"
	"github.com/mj1618/desktop-runner/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing step tools",
	Long: `Start a Model Context Protocol (MCP) server exposing run_steps, validate_steps,
find, read, list_actions and reset_session as tools. Search scope set by one
run_steps call carries over to the next.

Supported transports:
  stdio             Standard I/O (default)
  streamable-http   Streamable HTTP transport

Examples:
  desktop-runner serve
  desktop-runner serve --transport streamable-http --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "", "Transport: stdio, streamable-http (default server.transport)")
	serveCmd.Flags().Int("port", 0, "HTTP port for streamable-http (default server.port)")
	serveCmd.Flags().Int("cache-ttl", 500, "Tree cache TTL for the read tool in milliseconds (0 to disable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := server.Config{
		Transport: appConfig.Server.Transport,
		Port:      appConfig.Server.Port,
	}
	if t, _ := cmd.Flags().GetString("transport"); t != "" {
		cfg.Transport = t
	}
	if p, _ := cmd.Flags().GetInt("port"); p != 0 {
		cfg.Port = p
	}
	ttl, _ := cmd.Flags().GetInt("cache-ttl")
	cfg.CacheTTL = time.Duration(ttl) * time.Millisecond

	sess, err := newSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return server.New(sess, cfg, observability.GetLogger()).Serve(cfg)
}
