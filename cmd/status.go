/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tristendillon/modelsync/core/logger"
	"github.com/tristendillon/modelsync/core/schema"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"st"},
	Short:   "Shows the configuration and the schema it points at",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Println(cfg.Status())

		session, err := schema.Open(cfg, wd)
		if err != nil {
			logger.Warn("Schema unavailable: %v", err)
			return nil
		}
		defer session.Close()

		ws, err := session.Snapshot(cmd.Context())
		if err != nil {
			logger.Warn("Schema unavailable: %v", err)
			return nil
		}
		fmt.Println(schema.Summary(ws))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
