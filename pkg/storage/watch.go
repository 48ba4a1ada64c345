package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

var _ Watcher = (*LocalStorage)(nil)

// Watch reports document changes under the given collection prefixes until
// ctx is cancelled. Each collection directory is created if missing so it can
// be watched before the first document lands.
//
// Writes by this process are reported too; consumers that only care about
// foreign writes must filter on their own.
func (s *LocalStorage) Watch(ctx context.Context, prefixes []string, fn func(Change)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dirs := make(map[string]string, len(prefixes))
	for _, prefix := range prefixes {
		dir, err := s.resolve(prefix)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		dirs[dir] = prefix
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			// Temp files of in-flight writes land here first; the rename that
			// follows is reported as Create on the final name.
			if strings.HasPrefix(name, ".") {
				continue
			}
			prefix, ok := dirs[filepath.Dir(event.Name)]
			if !ok {
				continue
			}
			var op ChangeOp
			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				op = ChangeWrite
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				op = ChangeDelete
			default:
				continue
			}
			fn(Change{
				Prefix: prefix,
				Path:   strings.TrimPrefix(filepath.ToSlash(filepath.Join(prefix, name)), "/"),
				Op:     op,
				At:     time.Now(),
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "storage watcher error", "error", err)
		}
	}
}
