/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tristendillon/modelsync/core/config"
	"github.com/tristendillon/modelsync/core/logger"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Reads and changes configuration values",
	Long: `Reads and changes configuration values. Keys:
  ` + strings.Join(config.Keys(), "\n  "),
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Prints a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		value, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Changes a configuration value and saves the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}

		path := cfg.Path()
		if path == "" {
			path = config.DefaultFileName
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		logger.Info("Set %s = %s in %s", args[0], args[1], path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints every configuration value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		for _, key := range config.Keys() {
			value, err := cfg.Get(key)
			if err != nil {
				return err
			}
			fmt.Printf("%s = %s\n", key, value)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd, configSetCmd, configShowCmd)
}
