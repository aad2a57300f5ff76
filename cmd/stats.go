package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

// StatsCommand creates the stats command.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show index statistics",
		Action: func(ctx context.Context, c *cli.Command) error {
			return showStats(c.String("config"))
		},
	}
}

func showStats(configPath string) error {
	cfg, store, err := loadConfigAndStore(configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close store: %v\n", err)
		}
	}()

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("getting stats: %w", err)
	}
	active, err := store.CardCount()
	if err != nil {
		return fmt.Errorf("counting cards: %w", err)
	}

	fmt.Printf("📊 Index Statistics\n")
	fmt.Printf("═══════════════════\n\n")
	fmt.Printf("Database: %s\n\n", cfg.DBPath())
	fmt.Printf("Cards:         %s (%s active)\n", formatNumber(stats["cards"]), formatNumber(active))
	fmt.Printf("Indexed text:  %s\n", formatNumber(stats["card_derived_text"]))
	fmt.Printf("Tracked files: %s\n", formatNumber(stats["indexed_files"]))

	lastScan, err := store.GetMeta("last_scan")
	if err != nil {
		return fmt.Errorf("reading scan metadata: %w", err)
	}
	if lastScan != "" {
		if t, err := time.Parse(time.RFC3339, lastScan); err == nil {
			fmt.Printf("Last scan:     %s\n", formatTime(t.Local()))
		} else {
			fmt.Printf("Last scan:     %s\n", lastScan)
		}
	} else {
		fmt.Println("Last scan:     never")
	}
	return nil
}
