package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/vidscribe/internal/logger"
)

// Watch reloads the store whenever its file changes on disk, so API keys
// and the log level rotate without a restart. The parent directory is
// watched rather than the file itself because editors replace files on
// save. Invalid reloads are logged and the previous snapshot kept.
func (s *Store) Watch(ctx context.Context, log logger.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("add watch path: %w", err)
	}

	target, err := filepath.Abs(s.path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	log.Info(ctx, "Config watcher started. Monitoring: %s", s.path)

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "Config watcher stopped")
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || abs != target {
				continue
			}

			// Small delay so the file is fully written before reading
			time.Sleep(100 * time.Millisecond)

			if err := s.Reload(); err != nil {
				log.Warn(ctx, "Config reload failed, keeping previous snapshot: %v", err)
				continue
			}

			log.SetLevel(s.Snapshot().Logging.Level)
			log.Info(ctx, "Config reloaded from %s", s.path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.Error(ctx, "Config watcher error: %v", err)
		}
	}
}
