package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/pipeline"
)

// reloadDelay coalesces the burst of events editors produce on save.
const reloadDelay = 150 * time.Millisecond

// sceneFiles returns the absolute paths whose changes trigger a reload: the
// scene itself and every material library it names.
func sceneFiles(scenePath string, b *pipeline.Bundle) map[string]bool {
	files := make(map[string]bool)
	if abs, err := filepath.Abs(scenePath); err == nil {
		files[abs] = true
	}
	if b == nil {
		return files
	}

	dir := filepath.Dir(scenePath)
	for _, lib := range b.MaterialLibs {
		if abs, err := filepath.Abs(libraryPath(dir, lib)); err == nil {
			files[abs] = true
		}
	}
	return files
}

// relevant reports whether ev touches one of files in a way worth reloading.
func relevant(ev fsnotify.Event, files map[string]bool) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return files[abs]
}

// watch ingests name, prints its summary to w and repeats whenever the scene
// or one of its material libraries changes, until ctx is done.
func (e *env) watch(ctx context.Context, name string, w io.Writer) error {
	path, err := e.locator.Find(name)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Directories are watched rather than files so that editors which
	// replace the file on save are still seen.
	watchedDirs := make(map[string]bool)
	reload := func() map[string]bool {
		b, _, err := e.load(ctx, path)
		fmt.Fprintf(w, "--- %s\n", time.Now().Format("15:04:05"))
		if err != nil {
			logger.Warn("reload failed", zap.String("scene", path), zap.Error(err))
			fmt.Fprintf(w, "Error: %v\n", err)
		} else {
			writeInfo(w, buildReport(b, path, e.textures, false))
		}

		files := sceneFiles(path, b)
		for file := range files {
			dir := filepath.Dir(file)
			if watchedDirs[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
				continue
			}
			watchedDirs[dir] = true
		}
		return files
	}

	files := reload()

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if relevant(ev, files) {
				logger.Debug("scene file changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
				timer.Reset(reloadDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			files = reload()
		}
	}
}

func cmdWatch(args []string) {
	e := newEnv("watch", args)
	defer logger.Sync()
	e.requireArgs(1, "watch <scene.obj>")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := e.watch(ctx, e.fs.Arg(0), os.Stdout); err != nil {
		logger.Error("watch failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
