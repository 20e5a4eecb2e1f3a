package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/achtool/achtool/internal/config"
	"github.com/achtool/achtool/pkg/engine"
	"github.com/achtool/achtool/pkg/platform"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock <appid>",
	Short: "Unlock every unprotected achievement for one game",
	Long: `Unlock all achievements the user is allowed to change and store the
result through the platform client.

Output is a single machine-readable line:
  OK <changed> <skippedProtected> <unlocked> <total>
  ERR <code>

Error codes:
  invalid_appid                      the argument is not a positive integer
  missing_dll                        no platform binding in this build
  initialize_failed                  the platform client refused the session
  request_user_stats_failed          the stats request never completed
  request_user_stats_result_failed   the platform reported a failure result
  schema_unavailable                 the game's schema blob is not cached
  store_failed                       a platform write was rejected
  compute_progress_failed            the post-store rescan failed

Examples:
  achtool unlock 440`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadWorkspaceConfig()
		if err != nil {
			return err
		}
		return runUnlock(cmd.OutOrStdout(), cfg, args[0])
	},
}

func init() {
	rootCmd.AddCommand(unlockCmd)
}

func runUnlock(out io.Writer, cfg *config.Config, appIDArg string) error {
	appID, err := parseAppID(appIDArg)
	if err != nil {
		fmt.Fprintln(out, "ERR invalid_appid")
		return errReported
	}

	s, client, err := newGameSession(cfg, appID)
	if err != nil {
		fmt.Fprintf(out, "ERR %s\n", unlockErrCode(err))
		return errReported
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()
	if err := s.Refresh(ctx); err != nil {
		fmt.Fprintf(out, "ERR %s\n", unlockErrCode(err))
		return errReported
	}

	changed, skippedProtected := s.UnlockAll()
	if _, err := s.Store(); err != nil {
		fmt.Fprintf(out, "ERR %s\n", unlockErrCode(err))
		return errReported
	}

	// Rescan so the reported progress reflects what the platform actually
	// persisted rather than our own view.
	ctx2, cancel2 := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel2()
	if err := s.Refresh(ctx2); err != nil {
		fmt.Fprintln(out, "ERR compute_progress_failed")
		return errReported
	}

	unlocked, total := s.Progress()
	s.RecordProgress()
	fmt.Fprintf(out, "OK %d %d %d %d\n", changed, skippedProtected, unlocked, total)
	return nil
}

// unlockErrCode maps an unlock pipeline failure to its stdout error code.
func unlockErrCode(err error) string {
	switch {
	case errors.Is(err, platform.ErrNoDriver):
		return "missing_dll"
	case errors.Is(err, platform.ErrInitFailed):
		return "initialize_failed"
	case errors.Is(err, engine.ErrSchemaUnavailable):
		return "schema_unavailable"
	case errors.Is(err, engine.ErrStoreFailed):
		return "store_failed"
	}

	var resErr *engine.StatsResultError
	if errors.As(err, &resErr) {
		return "request_user_stats_result_failed"
	}
	var writeErr *engine.WriteError
	if errors.As(err, &writeErr) {
		return "store_failed"
	}
	return "request_user_stats_failed"
}
