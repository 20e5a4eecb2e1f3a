package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/achtool/achtool/internal/config"
	"github.com/achtool/achtool/pkg/engine"
	"github.com/achtool/achtool/pkg/ledger"
	"github.com/achtool/achtool/pkg/platform"
)

const appVersion = "0.1.0"

var verbose bool

// errReported marks an error already printed on the machine-readable
// channel. Execute exits nonzero without printing it again.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "achtool",
	Short: "Achievement and statistic manager",
	Long: `achtool inspects and edits per-game achievements and statistics
through the locally running platform client.

Headless commands (progress, unlock) print one machine-readable line
on stdout and are safe to script against.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		printError("%v", err)
	}
	return err
}

// openClient is swapped out by command tests.
var openClient = platform.Open

// newGameSession is the shared session constructor; tests replace it to
// inject a fake client and schema.
var newGameSession = func(cfg *config.Config, appID uint64, opts ...engine.SessionOption) (*engine.Session, platform.Client, error) {
	client, err := openClient(appID)
	if err != nil {
		return nil, nil, err
	}

	l := ledger.New(cfg.Ledger.Path,
		strconv.FormatUint(client.UserID(), 10),
		cfg.Ledger.ScanMode)

	all := append([]engine.SessionOption{
		engine.WithLanguage(cfg.Platform.Language),
		engine.WithLedger(l),
	}, opts...)

	s := engine.NewSession(client, appID, cfg.Platform.InstallPath, all...)
	return s, client, nil
}

func loadWorkspaceConfig() (*config.Config, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.NewLoader(workDir).LoadOrDefault()
}

func parseAppID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid app id: %s", arg)
	}
	return id, nil
}
