/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tristendillon/modelsync/core/generator"
	"github.com/tristendillon/modelsync/core/logger"
	"github.com/tristendillon/modelsync/core/schema"
)

var watchStage string

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Regenerates the source code models whenever the schema changes",
	Long: `Runs an update, then keeps listening for schema changes and runs another
update for each burst of changes. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if watchStage != "" {
			cfg.Watch.Stage = watchStage
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		session, err := schema.Open(cfg, wd)
		if err != nil {
			return fmt.Errorf("failed to open schema: %w", err)
		}
		defer session.Close()

		gen := generator.NewModelGenerator(cfg, wd)
		if err := gen.Watch(ctx, session); err != nil {
			return err
		}
		logger.Info("Stopped watching after %d passes", gen.Passes())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchStage, "stage", "", "Stage to subscribe to (default: watch.stage from the config)")
}
