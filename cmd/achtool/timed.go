package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/achtool/achtool/pkg/engine"
	"github.com/achtool/achtool/pkg/icons"
)

var timedCmd = &cobra.Command{
	Use:   "timed <appid> <duration>",
	Short: "Unlock remaining achievements spread over a duration",
	Long: `Unlock every locked unprotected achievement one at a time, at
randomized moments spread across the requested duration.

Duration accepts a number with an optional unit suffix: h (hours, the
default), m (minutes) or d (days). Interrupting with Ctrl-C abandons the
remaining plan; achievements already unlocked stay unlocked.

Examples:
  achtool timed 440 2h
  achtool timed 440 90m
  achtool timed 440 1d`,
	Args: cobra.ExactArgs(2),
	RunE: runTimed,
}

func init() {
	rootCmd.AddCommand(timedCmd)
}

func runTimed(cmd *cobra.Command, args []string) error {
	appID, err := parseAppID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadWorkspaceConfig()
	if err != nil {
		return err
	}

	queue := icons.NewQueue(icons.NewHTTPFetcher(cfg.Icons.BaseURL, appID))
	s, client, err := newGameSession(cfg, appID,
		engine.WithIconQueue(queue),
		engine.WithSessionStatusSink(func(msg string) {
			if verbose {
				printInfo("%s", msg)
			}
		}),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	refreshCtx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()
	if err := s.Refresh(refreshCtx); err != nil {
		return fmt.Errorf("failed to scan achievements: %w", err)
	}

	if err := s.StartTimedUnlock(args[1]); err != nil {
		if errors.Is(err, engine.ErrNothingToDo) {
			printInfo("Nothing to unlock")
			return nil
		}
		return err
	}

	unlocked, total := s.Progress()
	planned := s.Scheduler().Remaining()
	printInfo("Starting timed unlock: %d of %d already unlocked, %d planned",
		unlocked, total, planned)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(cfg.Engine.TickIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.StopTimedUnlock()
			printWarning("Interrupted; %d achievements left locked", s.Scheduler().Remaining())
			return nil
		case <-ticker.C:
			before := s.Scheduler().Completed()
			if err := s.Tick(); err != nil {
				return fmt.Errorf("timed unlock failed: %w", err)
			}
			if done := s.Scheduler().Completed(); done > before {
				printSuccess("unlocked %d of %d", done, planned)
			}
			if s.Scheduler().State() != engine.StateRunning {
				printSuccess("Timed unlock complete: %d achievements unlocked", s.Scheduler().Completed())
				return nil
			}
		}
	}
}
