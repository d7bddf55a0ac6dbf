package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/socgen/internal/ctxlog"
	"github.com/specialistvlad/socgen/internal/descriptor"
)

// Watch runs Setup, then runs it again whenever a descriptor under the
// configured paths changes, until ctx is cancelled. Failed runs are logged
// and do not stop the loop.
func (a *App) Watch(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)
	if len(a.config.DescriptorPaths) == 0 {
		return errors.New("watch needs at least one descriptor path")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	for _, p := range a.config.DescriptorPaths {
		dirs, err := watchDirs(p)
		if err != nil {
			return err
		}
		for _, dir := range dirs {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			logger.Debug("Watching descriptor directory.", "dir", dir)
		}
	}

	a.rebuild(ctx)
	logger.Info("Watching descriptors for changes.", "paths", a.config.DescriptorPaths)

	pending := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Descriptor watcher stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != descriptor.Extension || event.Has(fsnotify.Chmod) {
				continue
			}
			logger.Debug("Descriptor changed.", "file", event.Name, "op", event.Op.String())

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(a.config.Debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			a.rebuild(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Descriptor watcher error.", "error", err)
		}
	}
}

func (a *App) rebuild(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	res, err := a.Setup(ctx)
	if err != nil {
		logger.Error("Setup failed.", "error", err)
		return
	}
	logger.Info("Build tree ready.", "core", res.Design.Name, "build_dir", res.BuildDir, "files", len(res.Files()))
}

// watchDirs returns p and every directory below it, or the parent of p when
// p is a file. Editors often replace files by renaming, so files are watched
// through their directory.
func watchDirs(p string) ([]string, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", p, err)
	}
	if !info.IsDir() {
		return []string{filepath.Dir(p)}, nil
	}

	var dirs []string
	err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", p, err)
	}
	return dirs, nil
}
