package sheen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher invalidates cached rule sets when files in the override rules
// directory change, so long-running hosts (editors, preview servers) pick up
// rule edits without restarting.
type Watcher struct {
	engine  *Engine
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	mu         sync.Mutex
	isWatching bool
}

// StartWatching begins watching the engine's rules directory. It fails when
// the engine has no override directory configured.
func (e *Engine) StartWatching() (*Watcher, error) {
	if e.rulesDir == "" {
		return nil, fmt.Errorf("no rules directory configured")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{engine: e, watcher: fsw, logger: e.logger}

	err = filepath.Walk(e.rulesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("error adding directory to watcher: %w", err)
	}

	w.isWatching = true
	go w.watchLoop()
	return w, nil
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isWatching {
		return nil
	}
	w.isWatching = false
	return w.watcher.Close()
}

func (w *Watcher) watching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isWatching
}

func (w *Watcher) watchLoop() {
	for w.watching() {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("rules watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
		return
	}
	if !strings.HasSuffix(event.Name, ".scm") {
		return
	}

	// wait for a while after file change to consider multiple changes as one
	time.Sleep(100 * time.Millisecond)

	// <rulesDir>/<lang>/highlights.scm: the language is the directory name
	lang := filepath.Base(filepath.Dir(event.Name))
	w.engine.Reload(lang)
	w.logger.Info("reloaded rules", zap.String("language", lang), zap.String("file", event.Name))
}
