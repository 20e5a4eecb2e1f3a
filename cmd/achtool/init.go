package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/achtool/achtool/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file",
	Long: `Write a commented ` + config.FileName + ` into the current directory.

Examples:
  achtool init
  achtool init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		workDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}

		path := filepath.Join(workDir, config.FileName)
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
		}

		if err := os.WriteFile(path, []byte(config.Template()), 0644); err != nil {
			return fmt.Errorf("failed to write configuration: %w", err)
		}

		printSuccess("Created %s", config.FileName)
		printInfo("Set platform.install_path (or %s) before scanning", config.EnvInstallPath)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}
