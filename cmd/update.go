/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tristendillon/modelsync/core/generator"
	"github.com/tristendillon/modelsync/core/schema"
)

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"up"},
	Short:   "Generates the source code models once",
	Long: `Fetches the current schema and writes the declarations and stub files for
every module. Stub files keep their hand-written code; only classes missing
from them are appended.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		session, err := schema.Open(cfg, wd)
		if err != nil {
			return fmt.Errorf("failed to open schema: %w", err)
		}
		defer session.Close()

		gen := generator.NewModelGenerator(cfg, wd)
		if _, err := gen.Update(cmd.Context(), session); err != nil {
			return fmt.Errorf("failed to update models: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
