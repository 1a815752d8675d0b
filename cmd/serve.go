/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tristendillon/modelsync/core/server"
	"github.com/tristendillon/modelsync/core/schema"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve [schema-path]",
	Short: "Serves a schema file to remote modelsync sessions",
	Long: `Serves a schema file over HTTP and WebSocket. Other projects can point
schema.source at "remote" and schema.url at ws://<host>:<port>/ws to watch it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := cfg.Schema.Path
		if len(args) == 1 {
			path = args[0]
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(wd, path)
		}
		debounce, err := cfg.Watch.DebounceDuration()
		if err != nil {
			return err
		}

		session, err := schema.NewFileSession(path, debounce)
		if err != nil {
			return fmt.Errorf("failed to open schema: %w", err)
		}
		defer session.Close()

		host, port := cfg.Server.Host, cfg.Server.Port
		if cmd.Flags().Changed("host") {
			host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.NewServer(session, host, port).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host to listen on (default: server.host from the config)")
	serveCmd.Flags().IntVar(&servePort, "port", 8650, "Port to listen on (default: server.port from the config)")
}
