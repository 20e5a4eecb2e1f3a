package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/achtool/achtool/pkg/ledger"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recorded achievement progress",
	Long: `Display the progress ledger: one row per scanned game with its
achievement counts.

Examples:
  achtool status
  achtool status --format=json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadWorkspaceConfig()
		if err != nil {
			return err
		}

		doc := ledger.New(cfg.Ledger.Path, "", cfg.Ledger.ScanMode).Read()
		if len(doc.Games) == 0 {
			printInfo("No games recorded yet. Run 'achtool progress <appid>' first.")
			return nil
		}

		if statusFormat == "json" {
			return printGamesJSON(doc)
		}
		printGamesTable(doc)
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "table", "output format (table, json)")
	rootCmd.AddCommand(statusCmd)
}

func printGamesJSON(doc *ledger.Document) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func printGamesTable(doc *ledger.Document) {
	fmt.Printf("Ledger generated %s for user %s (%s scan)\n\n",
		doc.GeneratedAt, doc.UserID, doc.ScanMode)

	fmt.Printf("%-10s %-40s %-12s %s\n", "APP ID", "NAME", "PROGRESS", "FLAGS")
	fmt.Println("────────────────────────────────────────────────────────────────────────")

	for _, g := range doc.Games {
		fmt.Printf("%-10d %-40s %-12s %s\n",
			g.AppID,
			truncate(g.Name, 40),
			progressString(g.AchievementUnlocked, g.AchievementTotal),
			flagsString(g))
	}
	fmt.Printf("\n%d games recorded\n", len(doc.Games))
}

func progressString(unlocked, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d", unlocked, total)
}

func flagsString(g ledger.Entry) string {
	switch {
	case g.AchievementUnlockBlocked:
		return "blocked"
	case g.AchievementTotal > 0 && g.AchievementUnlocked == g.AchievementTotal:
		return "complete ✓"
	case g.HasIncompleteAchievements:
		return "incomplete"
	default:
		return ""
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
