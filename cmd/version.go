/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tristendillon/modelsync/core/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display the version of Modelsync",
	Long:    `Displays the version of Modelsync.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Modelsync %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
