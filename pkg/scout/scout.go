// Package scout discovers indexable documents on the local filesystem and
// feeds them into the card index as attachment cards. Discovery is
// best-effort: unreadable files and directories are logged and skipped,
// never fatal to a walk.
package scout

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/notefern/cardindex/pkg/core"
	"github.com/notefern/cardindex/pkg/extract"
	"github.com/notefern/cardindex/pkg/index"
	"github.com/notefern/cardindex/pkg/log"
	"github.com/notefern/cardindex/pkg/storage"
)

var logger = log.ForComponent("scout")

const defaultMaxFileSize = 64 << 20

// Stats summarizes one walk.
type Stats struct {
	Scanned int
	Indexed int
	Skipped int
	Failed  int
}

// Scanner walks directories and indexes the documents it finds.
type Scanner struct {
	store       *storage.Store
	extractor   *extract.Service
	outbox      *index.Outbox
	excluder    *Excluder
	roots       []string
	fileTimeout time.Duration
	maxFileSize int64
}

// ScannerOptions configures a Scanner. Zero values fall back to platform
// defaults.
type ScannerOptions struct {
	Roots       []string
	Excludes    []string
	FileTimeout time.Duration
	MaxFileSize int64
}

func NewScanner(store *storage.Store, extractor *extract.Service, outbox *index.Outbox, opts ScannerOptions) *Scanner {
	roots := opts.Roots
	if len(roots) == 0 {
		roots = DefaultRoots()
	}
	timeout := opts.FileTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = defaultMaxFileSize
	}
	return &Scanner{
		store:       store,
		extractor:   extractor,
		outbox:      outbox,
		excluder:    NewExcluder(opts.Excludes),
		roots:       roots,
		fileTimeout: timeout,
		maxFileSize: maxSize,
	}
}

// Walk scans every root, indexing new and changed files. Cancellation is
// checked at directory and file granularity.
func (s *Scanner) Walk(ctx context.Context) (Stats, error) {
	var stats Stats
	for _, root := range s.roots {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		logger.Infof("scanning %s", root)
		if err := s.walkRoot(ctx, root, &stats); err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			logger.Warnf("walking %s: %v", root, err)
		}
	}
	s.outbox.Flush()
	if err := s.store.SetMeta("last_scan", time.Now().UTC().Format(time.RFC3339)); err != nil {
		logger.Warnf("recording scan time: %v", err)
	}
	logger.Infof("scan done: %d scanned, %d indexed, %d skipped, %d failed",
		stats.Scanned, stats.Indexed, stats.Skipped, stats.Failed)
	return stats, nil
}

func (s *Scanner) walkRoot(ctx context.Context, root string, stats *Stats) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			logger.Debugf("skipping %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if path != root && s.excluder.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		s.visitFile(ctx, path, d, stats)
		return nil
	})
}

func (s *Scanner) visitFile(ctx context.Context, path string, d fs.DirEntry, stats *Stats) {
	stats.Scanned++

	if s.excluder.SkipFile(path) {
		stats.Skipped++
		return
	}
	kind, ok := Classify(path)
	if !ok {
		stats.Skipped++
		return
	}
	info, err := d.Info()
	if err != nil {
		stats.Failed++
		logger.Debugf("stat %s: %v", path, err)
		return
	}
	if info.Size() > s.maxFileSize {
		stats.Skipped++
		logger.Debugf("skipping oversized file %s (%d bytes)", path, info.Size())
		return
	}

	prev, known, err := s.store.LookupIndexedFile(path)
	if err != nil {
		stats.Failed++
		logger.Warnf("looking up %s: %v", path, err)
		return
	}
	if known && prev.Size == info.Size() && prev.ModTime.Equal(info.ModTime().UTC().Truncate(time.Second)) {
		stats.Skipped++
		return
	}

	if err := s.IndexFile(ctx, path, kind, info); err != nil {
		stats.Failed++
		logger.Warnf("indexing %s: %v", path, err)
		return
	}
	stats.Indexed++
}

// IndexFile extracts one file and queues it as an attachment card. A file
// already known keeps its card id, so re-indexing is an update.
func (s *Scanner) IndexFile(ctx context.Context, path string, kind core.DocumentKind, info os.FileInfo) error {
	fileCtx, cancel := context.WithTimeout(ctx, s.fileTimeout)
	defer cancel()

	doc, err := s.extractor.Extract(fileCtx, path, kind)
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}

	prev, known, err := s.store.LookupIndexedFile(path)
	if err != nil {
		return fmt.Errorf("looking up fingerprint: %w", err)
	}
	cardID := prev.CardID
	if !known {
		cardID = uuid.NewString()
	}

	now := time.Now().UTC().Truncate(time.Second)
	card := &core.Card{
		ID:          cardID,
		CardType:    core.TypeAttachment,
		SubType:     string(kind),
		Name:        filepath.Base(path),
		Description: path,
		SpaceID:     "local-files",
		CreateTime:  now,
		UpdateTime:  now,
	}
	content := &core.Content{Kind: core.ContentFile, Raw: doc.Content}
	s.outbox.NotifyUpsert(card, content)

	return s.store.RecordIndexedFile(storage.IndexedFile{
		Path:    path,
		CardID:  cardID,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC().Truncate(time.Second),
	})
}

// Forget removes a vanished file's card and fingerprint.
func (s *Scanner) Forget(path string) {
	prev, known, err := s.store.LookupIndexedFile(path)
	if err != nil || !known {
		return
	}
	s.outbox.NotifyDelete(prev.CardID)
	if err := s.store.DeleteIndexedFile(path); err != nil {
		logger.Warnf("forgetting %s: %v", path, err)
	}
}
