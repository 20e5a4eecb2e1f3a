package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/achtool/achtool/internal/config"
)

// statsTimeout bounds one request/wait cycle against the platform.
const statsTimeout = 30 * time.Second

var progressCmd = &cobra.Command{
	Use:   "progress <appid>",
	Short: "Print achievement progress for one game",
	Long: `Scan one game's achievements and print progress on stdout.

Output is a single machine-readable line:
  <unlocked> <total>        on success
  ERR invalid_appid         the argument is not a positive integer
  ERR scan_failed           the scan could not complete

Examples:
  achtool progress 440
  achtool progress 440 && echo scanned`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadWorkspaceConfig()
		if err != nil {
			return err
		}
		return runProgress(cmd.OutOrStdout(), cfg, args[0])
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
}

func runProgress(out io.Writer, cfg *config.Config, appIDArg string) error {
	appID, err := parseAppID(appIDArg)
	if err != nil {
		fmt.Fprintln(out, "ERR invalid_appid")
		return errReported
	}

	s, client, err := newGameSession(cfg, appID)
	if err != nil {
		fmt.Fprintln(out, "ERR scan_failed")
		return errReported
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()
	if err := s.Refresh(ctx); err != nil {
		fmt.Fprintln(out, "ERR scan_failed")
		return errReported
	}

	unlocked, total := s.Progress()
	s.RecordProgress()
	fmt.Fprintf(out, "%d %d\n", unlocked, total)
	return nil
}
