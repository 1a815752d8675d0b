/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tristendillon/modelsync/core/config"
	"github.com/tristendillon/modelsync/core/logger"
	"github.com/tristendillon/modelsync/core/template_engine"
)

var (
	force      bool
	typescript bool
	useRequire bool
	location   string
	library    string
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a new Modelsync project",
	Long: `Writes a default modelsync.yaml and a starter schema.yaml into dir (the
working directory when omitted). Flags override the defaults written to the
config.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}

		configFile := filepath.Join(dir, config.DefaultFileName)
		if existing := config.Find(dir); existing != "" {
			if !force {
				return fmt.Errorf("config %s already exists, use --force to overwrite", existing)
			}
			logger.Debug("Config %s already exists. Overwriting.", existing)
			configFile = existing
		}

		cfg := config.Default()
		overrides := map[string]string{}
		if cmd.Flags().Changed("typescript") {
			overrides["output.typescript"] = strconv.FormatBool(typescript)
		}
		if cmd.Flags().Changed("require") {
			overrides["output.use_require"] = strconv.FormatBool(useRequire)
		}
		if cmd.Flags().Changed("location") {
			overrides["output.location"] = location
		}
		if cmd.Flags().Changed("library") {
			overrides["output.library"] = library
		}
		for key, value := range overrides {
			if err := cfg.Set(key, value); err != nil {
				return err
			}
		}

		if err := cfg.Save(configFile); err != nil {
			return err
		}
		logger.Info("Wrote %s", configFile)

		schemaFile := filepath.Join(dir, cfg.Schema.Path)
		if _, err := os.Stat(schemaFile); err == nil && !force {
			logger.Info("Keeping existing schema %s", schemaFile)
		} else {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", dir, err)
			}
			data := map[string]string{
				"Project":    filepath.Base(abs),
				"ModuleName": "sales",
			}
			engine := template_engine.NewTemplateEngine()
			if err := engine.GenerateFolder(template_engine.TEMPLATES.INIT.Ref, dir, data); err != nil {
				return fmt.Errorf("failed to generate starter schema: %w", err)
			}
			logger.Info("Wrote %s", schemaFile)
		}

		fmt.Printf("Next Steps:\n")
		if dir != "." {
			fmt.Printf("  - cd %s\n", dir)
		}
		fmt.Printf("  - edit %s\n", cfg.Schema.Path)
		fmt.Printf("  - modelsync update\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "Force overwrite existing files")
	initCmd.Flags().BoolVar(&typescript, "typescript", false, "Generate TypeScript stubs")
	initCmd.Flags().BoolVar(&useRequire, "require", true, "Use require() instead of import statements")
	initCmd.Flags().StringVar(&location, "location", filepath.Join("src", "model"), "Source code model location")
	initCmd.Flags().StringVar(&library, "library", "@frusal/library-for-node", "Library the generated code imports")
}
