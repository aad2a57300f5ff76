package cmd

import (
	"fmt"
	"os"

	"github.com/notefern/cardindex/pkg/config"
	"github.com/notefern/cardindex/pkg/content"
	"github.com/notefern/cardindex/pkg/extract"
	"github.com/notefern/cardindex/pkg/index"
	"github.com/notefern/cardindex/pkg/scout"
	"github.com/notefern/cardindex/pkg/segment"
	"github.com/notefern/cardindex/pkg/storage"
)

// loadConfigAndStore is the shared startup path for commands operating on
// the index database.
func loadConfigAndStore(configPath string) (*config.Config, *storage.Store, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	store, err := storage.Open(cfg.DBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return cfg, store, nil
}

// newScanner wires the extraction, indexing, and walking layers together
// the way the scan and watch commands need them. The caller owns closing
// the outbox before the store.
func newScanner(cfg *config.Config, store *storage.Store) (*scout.Scanner, *index.Outbox) {
	policy := cfg.Filter.Policy()
	writer := index.NewWriterWith(store, newSegmenter(cfg), content.NewExtractor(policy))
	outbox := index.NewOutbox(writer, 0)
	extractor := extract.NewService(extract.WithFilterPolicy(policy))
	scanner := scout.NewScanner(store, extractor, outbox, scout.ScannerOptions{
		Roots:       cfg.Scan.Roots,
		Excludes:    cfg.Scan.Excludes,
		FileTimeout: cfg.Scan.FileTimeout.Duration,
		MaxFileSize: cfg.Scan.MaxFileSize,
	})
	return scanner, outbox
}

// newSegmenter builds the segmenter every command shares, layering the
// configured user dictionary over the embedded one when present.
func newSegmenter(cfg *config.Config) *segment.Segmenter {
	dict := segment.DefaultDictionary()
	if path := cfg.Segment.UserDictionary; path != "" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Printf("Warning: user dictionary %s: %v\n", path, err)
		} else {
			dict.Load(f)
			f.Close()
		}
	}
	return segment.NewWithDictionary(dict)
}
