package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// ScanCommand creates the scan command.
func ScanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Walk configured directories and index documents",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "root",
				Usage: "Directory to scan instead of the configured roots. Can be used multiple times",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return scanDocuments(ctx, c.String("config"), c.StringSlice("root"))
		},
	}
}

func scanDocuments(ctx context.Context, configPath string, roots []string) error {
	cfg, store, err := loadConfigAndStore(configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close store: %v\n", err)
		}
	}()

	if len(roots) > 0 {
		cfg.Scan.Roots = roots
	}

	scanner, outbox := newScanner(cfg, store)
	defer outbox.Close()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stats, err := scanner.Walk(ctx)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("Scan interrupted")
		}
		return err
	}
	fmt.Printf("Scanned %d files: %d indexed, %d skipped, %d failed\n",
		stats.Scanned, stats.Indexed, stats.Skipped, stats.Failed)
	return nil
}
