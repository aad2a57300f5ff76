package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// OptimizeCommand creates the optimize command.
func OptimizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Optimize the index database (FTS merge, analyze, WAL checkpoint)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "vacuum",
				Usage: "Also rebuild the database file to reclaim space",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return optimizeDatabase(c.String("config"), c.Bool("vacuum"))
		},
	}
}

func optimizeDatabase(configPath string, vacuum bool) error {
	_, store, err := loadConfigAndStore(configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close store: %v\n", err)
		}
	}()

	fmt.Println("Optimizing full-text index...")
	if err := store.Optimize(); err != nil {
		return fmt.Errorf("optimizing index: %w", err)
	}

	fmt.Println("Updating query planner statistics...")
	if err := store.Analyze(); err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}

	fmt.Println("Checkpointing WAL...")
	if err := store.WALCheckpoint(); err != nil {
		return fmt.Errorf("checkpointing: %w", err)
	}

	if vacuum {
		fmt.Println("Vacuuming database...")
		if err := store.Vacuum(); err != nil {
			return fmt.Errorf("vacuuming: %w", err)
		}
	}

	fmt.Println("Optimization complete")
	return nil
}
