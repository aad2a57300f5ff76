package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/notefern/cardindex/pkg/content"
	"github.com/notefern/cardindex/pkg/core"
	"github.com/notefern/cardindex/pkg/index"
)

// ingestCard is the JSON shape accepted by the ingest command. It mirrors
// the card export format of the note application.
type ingestCard struct {
	ID          string    `json:"id"`
	CardType    string    `json:"cardType"`
	SubType     string    `json:"subType"`
	Name        string    `json:"name"`
	Text        string    `json:"text"`
	Description string    `json:"description"`
	MarkText    string    `json:"markText"`
	SpaceID     string    `json:"spaceId"`
	Deleted     bool      `json:"deleted"`
	CreateTime  time.Time `json:"createTime"`
	UpdateTime  time.Time `json:"updateTime"`
	Content     *struct {
		Kind  string `json:"kind"`
		Raw   string `json:"raw"`
		Attrs string `json:"attrs"`
		Views string `json:"views"`
	} `json:"content"`
}

// IngestCommand creates the ingest command.
func IngestCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Index cards from JSON files",
		ArgsUsage: "<file>...",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return fmt.Errorf("usage: ingest <file>...")
			}
			return ingestFiles(c.String("config"), c.Args().Slice())
		},
	}
}

func ingestFiles(configPath string, paths []string) error {
	cfg, store, err := loadConfigAndStore(configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close store: %v\n", err)
		}
	}()

	writer := index.NewWriterWith(store, newSegmenter(cfg), content.NewExtractor(cfg.Filter.Policy()))
	outbox := index.NewOutbox(writer, 0)
	defer outbox.Close()

	total := 0
	for _, path := range paths {
		cards, err := readIngestFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, ic := range cards {
			card, ct := ic.toCore()
			outbox.NotifyUpsert(card, ct)
			total++
		}
	}
	outbox.Flush()

	fmt.Printf("Ingested %d cards from %d files\n", total, len(paths))
	return nil
}

// readIngestFile accepts either a single card object or an array of cards.
func readIngestFile(path string) ([]ingestCard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cards []ingestCard
	if err := json.Unmarshal(data, &cards); err == nil {
		return cards, nil
	}
	var single ingestCard
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return []ingestCard{single}, nil
}

func (ic ingestCard) toCore() (*core.Card, *core.Content) {
	card := &core.Card{
		ID:          ic.ID,
		CardType:    core.CardType(ic.CardType),
		SubType:     ic.SubType,
		Name:        ic.Name,
		Text:        ic.Text,
		Description: ic.Description,
		MarkText:    ic.MarkText,
		SpaceID:     ic.SpaceID,
		Deleted:     ic.Deleted,
		CreateTime:  ic.CreateTime,
		UpdateTime:  ic.UpdateTime,
	}
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	if card.CardType == "" {
		card.CardType = core.TypeCard
	}
	now := time.Now()
	if card.CreateTime.IsZero() {
		card.CreateTime = now
	}
	if card.UpdateTime.IsZero() {
		card.UpdateTime = now
	}

	var ct *core.Content
	if ic.Content != nil {
		ct = &core.Content{
			Kind:  core.ContentKind(ic.Content.Kind),
			Raw:   ic.Content.Raw,
			Attrs: ic.Content.Attrs,
			Views: ic.Content.Views,
		}
		if ct.Kind == "" {
			ct.Kind = core.ContentKindFor(card.CardType)
		}
	}
	return card, ct
}
