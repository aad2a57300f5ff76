package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/urfave/cli/v3"

	"github.com/notefern/cardindex/pkg/core"
)

// exportRecord is one line of the JSONL export stream.
type exportRecord struct {
	CardID     string `json:"cardId"`
	CardType   string `json:"cardType"`
	Name       string `json:"name"`
	SpaceID    string `json:"spaceId"`
	OriginText string `json:"originText"`
	UpdatedAt  string `json:"updatedAt"`
}

// ExportCommand creates the export command.
func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export indexed text as JSON lines, zstd-compressed by default",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Usage: "Output file (default stdout)",
			},
			&cli.BoolFlag{
				Name:  "no-compress",
				Usage: "Write plain JSON lines without zstd compression",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return exportIndex(c.String("config"), c.String("output"), !c.Bool("no-compress"))
		},
	}
}

func exportIndex(configPath, output string, compress bool) error {
	_, store, err := loadConfigAndStore(configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close store: %v\n", err)
		}
	}()

	var out io.Writer = os.Stdout
	if output != "" {
		if compress && !strings.HasSuffix(output, ".zst") {
			output += ".zst"
		}
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		out = f
	}

	if compress {
		zw, err := zstd.NewWriter(out)
		if err != nil {
			return fmt.Errorf("creating zstd writer: %w", err)
		}
		defer zw.Close()
		out = zw
	}

	enc := json.NewEncoder(out)
	count := 0
	err = store.WalkDerivedText(func(d *core.DerivedText) error {
		count++
		return enc.Encode(exportRecord{
			CardID:     d.CardID,
			CardType:   string(d.CardType),
			Name:       d.Name,
			SpaceID:    d.SpaceID,
			OriginText: d.OriginText,
			UpdatedAt:  d.UpdatedAt.Format(time.RFC3339),
		})
	})
	if err != nil {
		return fmt.Errorf("exporting: %w", err)
	}

	if output != "" {
		fmt.Printf("Exported %d records to %s\n", count, output)
	}
	return nil
}
