package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/notefern/cardindex/pkg/search"
)

// SuggestCommand creates the suggest command.
func SuggestCommand() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Suggest card names matching a partial query",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of suggestions",
				Value: 10,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")
			if query == "" {
				return fmt.Errorf("usage: suggest <query>")
			}
			return suggestNames(c.String("config"), query, c.Int("limit"))
		},
	}
}

func suggestNames(configPath, query string, limit int) error {
	cfg, store, err := loadConfigAndStore(configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close store: %v\n", err)
		}
	}()

	svc := search.NewServiceWith(store, newSegmenter(cfg))
	names, err := svc.Suggest(query, limit)
	if err != nil {
		return fmt.Errorf("suggesting: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("No suggestions")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
