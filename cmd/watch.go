package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// WatchCommand creates the watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch configured directories and index documents as they change",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "initial-scan",
				Usage: "Run a full scan before watching",
				Value: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return watchDocuments(ctx, c.String("config"), c.Bool("initial-scan"))
		},
	}
}

func watchDocuments(ctx context.Context, configPath string, initialScan bool) error {
	cfg, store, err := loadConfigAndStore(configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close store: %v\n", err)
		}
	}()

	scanner, outbox := newScanner(cfg, store)
	defer outbox.Close()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if initialScan {
		stats, err := scanner.Walk(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Initial scan: %d files, %d indexed\n", stats.Scanned, stats.Indexed)
	}

	fmt.Println("Watching for changes, press Ctrl+C to stop")
	if err := scanner.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watching: %w", err)
	}
	fmt.Println("Watch stopped")
	return nil
}
