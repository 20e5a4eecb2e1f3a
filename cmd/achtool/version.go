package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show achtool version",
	Long:  "Display the current version of the achtool CLI and engine library",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("achtool v%s\n", appVersion)

		if verbose {
			fmt.Println("\nComponents:")
			fmt.Printf("  CLI:    v%s\n", appVersion)
			fmt.Printf("  Engine: v%s\n", appVersion)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
