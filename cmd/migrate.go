package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/urfave/cli/v3"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/notefern/cardindex/pkg/config"
	"github.com/notefern/cardindex/pkg/db"
)

// MigrateCommand creates the migrate command.
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "status",
				Usage: "Show migration status without applying migrations",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runMigrations(c.String("config"), c.Bool("status"))
		},
	}
}

// runMigrations opens the database without the store layer so that
// status can be reported before anything is applied.
func runMigrations(configPath string, statusOnly bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	conn, err := sql.Open("sqlite3", cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer conn.Close()

	manager := db.NewManager(conn)

	if statusOnly {
		applied, pending, err := manager.Status()
		if err != nil {
			return fmt.Errorf("getting migration status: %w", err)
		}
		fmt.Printf("Applied migrations: %d\n", len(applied))
		for _, m := range applied {
			at := "unknown"
			if m.AppliedAt != nil {
				at = m.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("  ✓ %03d: %s (applied: %s)\n", m.Version, m.Name, at)
		}
		fmt.Printf("Pending migrations: %d\n", len(pending))
		for _, m := range pending {
			fmt.Printf("  • %03d: %s\n", m.Version, m.Name)
		}
		return nil
	}

	if err := manager.Apply(); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	fmt.Println("Migrations completed successfully")
	return nil
}
