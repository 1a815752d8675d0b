package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tristendillon/modelsync/core/logger"
)

const DefaultDebounce = 500 * time.Millisecond

// FileWatcher watches a single file or a directory tree and calls OnChange
// once per burst of events.
type FileWatcher struct {
	Watcher       *fsnotify.Watcher
	Target        string
	ExcludePaths  []string
	Debounce      time.Duration
	DebounceTimer *time.Timer
	Mutex         sync.Mutex
	OnStart       func() error
	OnChange      func() error
	OnClose       func() error

	isDir     bool
	started   bool
	closed    bool
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func NewFileWatcher(target string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", target, err)
	}

	stat, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", target, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &FileWatcher{
		Watcher:      w,
		Target:       abs,
		ExcludePaths: []string{".git", "node_modules"},
		Debounce:     debounce,
		isDir:        stat.IsDir(),
		done:         make(chan struct{}),
	}, nil
}

func (fw *FileWatcher) AddOnStartFunc(onStart func() error) {
	fw.OnStart = onStart
}

func (fw *FileWatcher) AddOnChangeFunc(onChange func() error) {
	fw.OnChange = onChange
}

func (fw *FileWatcher) AddOnCloseFunc(onClose func() error) {
	fw.OnClose = onClose
}

// Start registers the watches and processes events in the background until
// ctx is done or Close is called.
func (fw *FileWatcher) Start(ctx context.Context) error {
	if fw.isDir {
		if err := fw.addWatchersRecursively(fw.Target); err != nil {
			return fmt.Errorf("failed to add watchers: %w", err)
		}
	} else {
		// Editors often replace files by rename, which drops a watch on the
		// file itself, so watch the directory and filter by name.
		if err := fw.Watcher.Add(filepath.Dir(fw.Target)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", fw.Target, err)
		}
	}

	if fw.OnStart != nil {
		if err := fw.OnStart(); err != nil {
			logger.Error("Watcher.OnStart failed: %v", err)
		}
	}

	fw.Mutex.Lock()
	fw.started = true
	fw.Mutex.Unlock()

	go fw.loop(ctx)
	return nil
}

func (fw *FileWatcher) loop(ctx context.Context) {
	defer close(fw.done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Watcher.Events:
			if !ok {
				return
			}

			if !fw.relevant(event.Name) {
				continue
			}

			logger.Debug("File event: %s %s", event.Op, event.Name)

			if fw.isDir && event.Has(fsnotify.Create) {
				if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
					logger.Debug("Adding watcher for new directory: %s", event.Name)
					if err := fw.Watcher.Add(event.Name); err != nil {
						logger.Warn("Failed to watch %s: %v", event.Name, err)
					}
				}
			}

			fw.debounceChange()

		case err, ok := <-fw.Watcher.Errors:
			if !ok {
				return
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (fw *FileWatcher) relevant(path string) bool {
	if !fw.isDir {
		return filepath.Clean(path) == fw.Target
	}
	return !fw.shouldExcludePath(path)
}

func (fw *FileWatcher) debounceChange() {
	fw.Mutex.Lock()
	defer fw.Mutex.Unlock()

	if fw.closed {
		return
	}

	if fw.DebounceTimer != nil {
		fw.DebounceTimer.Stop()
	}

	fw.DebounceTimer = time.AfterFunc(fw.Debounce, func() {
		fw.Mutex.Lock()
		closed := fw.closed
		fw.Mutex.Unlock()
		if closed || fw.OnChange == nil {
			return
		}

		logger.Debug("Changes detected in %s", fw.Target)
		if err := fw.OnChange(); err != nil {
			logger.Error("Watcher.OnChange failed: %v", err)
		}
	})
}

// Close stops the watcher and waits for the event loop to exit when it was
// started. It is safe to call more than once.
func (fw *FileWatcher) Close() error {
	fw.closeOnce.Do(func() {
		fw.Mutex.Lock()
		fw.closed = true
		started := fw.started
		if fw.DebounceTimer != nil {
			fw.DebounceTimer.Stop()
		}
		fw.Mutex.Unlock()

		if fw.OnClose != nil {
			if err := fw.OnClose(); err != nil {
				logger.Error("Watcher.OnClose failed: %v", err)
			}
		}

		fw.closeErr = fw.Watcher.Close()
		if started {
			<-fw.done
		}
	})
	return fw.closeErr
}

// Done is closed when the event loop has exited.
func (fw *FileWatcher) Done() <-chan struct{} {
	return fw.done
}

func (fw *FileWatcher) shouldExcludePath(path string) bool {
	relPath, err := filepath.Rel(fw.Target, path)
	if err != nil {
		return false
	}

	relPath = filepath.Clean(relPath)

	for _, excludePath := range fw.ExcludePaths {
		excludePath = filepath.Clean(excludePath)

		if relPath == excludePath {
			return true
		}
		if strings.HasPrefix(relPath, excludePath+string(filepath.Separator)) {
			return true
		}
	}

	return false
}

func (fw *FileWatcher) addWatchersRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if fw.shouldExcludePath(path) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}

		logger.Debug("Adding watcher for: %s", path)
		if err := fw.Watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}

		return nil
	})
}
