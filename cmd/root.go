/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tristendillon/modelsync/core/config"
	"github.com/tristendillon/modelsync/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "modelsync",
	Short: "Keeps source code models in sync with a schema.",
	Long: `Modelsync generates class declarations and editable stub files for every
module of a schema workspace, and can keep them up to date while the schema
changes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		if noColor {
			logger.SetColor(false)
		}
		if logfile != "" {
			f, err := logger.OpenLogFile(logfile)
			if err != nil {
				return err
			}
			logCloser = f
		}
		logger.Debug("%s called", cmd.CommandPath())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

var (
	configPath string
	logfile    string
	verbose    bool
	noColor    bool

	logCloser io.Closer
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: modelsync.yaml, .yml, .toml or .json in the working directory)")
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// loadConfig returns the working directory and the config that applies to it.
func loadConfig() (string, *config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", nil, err
	}
	return wd, cfg, nil
}
