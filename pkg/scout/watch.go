package scout

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch follows the scanner's roots for changes, indexing new and modified
// files and forgetting removed ones. Blocks until the context is canceled.
// Subdirectories created while watching are picked up too.
func (s *Scanner) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warnf("closing watcher: %v", err)
		}
	}()

	for _, root := range s.roots {
		if err := s.watchTree(watcher, root); err != nil {
			logger.Warnf("watching %s: %v", root, err)
		}
	}
	logger.Infof("watching %d roots for changes", len(s.roots))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleEvent(ctx, watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watch error: %v", err)
		}
	}
}

func (s *Scanner) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	path := event.Name

	switch {
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if !s.excluder.SkipDir(path) {
				if err := s.watchTree(watcher, path); err != nil {
					logger.Debugf("watching new directory %s: %v", path, err)
				}
			}
			return
		}
		s.maybeIndex(ctx, path, info)

	case event.Op.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return
		}
		s.maybeIndex(ctx, path, info)

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		s.Forget(path)
	}
}

func (s *Scanner) maybeIndex(ctx context.Context, path string, info os.FileInfo) {
	if s.excluder.SkipFile(path) {
		return
	}
	kind, ok := Classify(path)
	if !ok {
		return
	}
	if info.Size() > s.maxFileSize {
		return
	}
	if err := s.IndexFile(ctx, path, kind, info); err != nil {
		logger.Warnf("indexing %s: %v", path, err)
	}
}

// watchTree registers path and every non-excluded subdirectory.
func (s *Scanner) watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && s.excluder.SkipDir(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			logger.Debugf("adding watch on %s: %v", path, err)
		}
		return nil
	})
}
