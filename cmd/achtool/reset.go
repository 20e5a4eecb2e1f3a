package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	resetAchievements bool
	resetConfirmed    bool
)

var resetCmd = &cobra.Command{
	Use:   "reset <appid>",
	Short: "Reset all statistics for one game",
	Long: `Reset every statistic for one game back to its platform default.
With --achievements, achievements are relocked as well.

This is destructive and requires --yes.

Examples:
  achtool reset 440 --yes
  achtool reset 440 --achievements --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appID, err := parseAppID(args[0])
		if err != nil {
			return err
		}

		if !resetConfirmed {
			return fmt.Errorf("refusing to reset without --yes")
		}

		cfg, err := loadWorkspaceConfig()
		if err != nil {
			return err
		}

		s, client, err := newGameSession(cfg, appID)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := s.ResetAll(resetAchievements); err != nil {
			return err
		}

		if resetAchievements {
			printSuccess("Statistics and achievements reset")
		} else {
			printSuccess("Statistics reset")
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetAchievements, "achievements", false, "also relock achievements")
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm the reset")
	rootCmd.AddCommand(resetCmd)
}
