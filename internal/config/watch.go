package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cinefeed/cinefeed/internal/logger"
)

// FileWatcher reloads the configuration when the config file changes on disk.
type FileWatcher struct {
	manager *Manager
	watcher *fsnotify.Watcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	debounceDelay time.Duration

	mu      sync.Mutex
	pending *time.Timer
}

// NewFileWatcher creates a watcher for the manager's loaded config file.
func NewFileWatcher(manager *Manager) (*FileWatcher, error) {
	if manager.ConfigPath() == "" {
		return nil, fmt.Errorf("no config file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		manager:       manager,
		watcher:       watcher,
		debounceDelay: 500 * time.Millisecond,
	}, nil
}

// Start begins watching the config file's directory for changes.
// Watching the directory rather than the file survives editors that
// replace the file via rename.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	dir := filepath.Dir(fw.manager.ConfigPath())
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}

	fw.wg.Add(1)
	go fw.watchLoop()

	logger.Info("Watching configuration file: %s", fw.manager.ConfigPath())
	return nil
}

// Stop stops the watcher and waits for the watch loop to exit.
func (fw *FileWatcher) Stop() error {
	if fw.cancel != nil {
		fw.cancel()
	}
	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}

func (fw *FileWatcher) watchLoop() {
	defer fw.wg.Done()

	configPath, _ := filepath.Abs(fw.manager.ConfigPath())

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			eventPath, _ := filepath.Abs(event.Name)
			if eventPath != configPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fw.scheduleReload()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Config watcher error: %v", err)
		}
	}
}

// scheduleReload debounces bursts of filesystem events into one reload.
func (fw *FileWatcher) scheduleReload() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.pending != nil {
		fw.pending.Stop()
	}

	fw.pending = time.AfterFunc(fw.debounceDelay, func() {
		if err := fw.manager.LoadConfig(fw.manager.ConfigPath()); err != nil {
			logger.Error("Failed to reload configuration: %v", err)
			return
		}
		logger.Info("Configuration reloaded")
	})
}
