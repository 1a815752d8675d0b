package schema

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tristendillon/modelsync/core/logger"
	"github.com/tristendillon/modelsync/core/watcher"
)

// FileEventDebounce folds the filesystem events of a single save into one
// reload. Sessions opened for the watch loop use it instead of watch.debounce,
// which the loop already waits out once per burst.
const FileEventDebounce = 50 * time.Millisecond

// FileSession serves a schema document from disk. The file is watched once
// the first subscription opens, and every successful reload notifies
// subscribers.
type FileSession struct {
	*MemorySession

	path     string
	debounce time.Duration

	mu      sync.Mutex
	watcher *watcher.FileWatcher
}

func NewFileSession(path string, debounce time.Duration) (*FileSession, error) {
	ws, err := LoadWorkspace(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded schema %s (%s)", path, FormatOf(path))

	return &FileSession{
		MemorySession: NewMemorySession(ws),
		path:          path,
		debounce:      debounce,
	}, nil
}

func (s *FileSession) Path() string {
	return s.path
}

// Reload rereads the document. On failure the previous snapshot stays.
func (s *FileSession) Reload() error {
	ws, err := LoadWorkspace(s.path)
	if err != nil {
		return err
	}
	logger.Debug("Reloaded schema %s", s.path)
	s.Update(ws)
	return nil
}

func (s *FileSession) Subscribe(ctx context.Context, stage string) (Subscription, error) {
	if err := s.startWatcher(); err != nil {
		return nil, err
	}
	return s.MemorySession.Subscribe(ctx, stage)
}

func (s *FileSession) startWatcher() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return nil
	}

	fw, err := watcher.NewFileWatcher(s.path, s.debounce)
	if err != nil {
		return fmt.Errorf("failed to watch schema: %w", err)
	}
	fw.AddOnStartFunc(func() error {
		logger.Debug("Watching schema %s", s.path)
		return nil
	})
	fw.AddOnChangeFunc(s.Reload)
	fw.AddOnCloseFunc(func() error {
		logger.Debug("Stopped watching schema %s", s.path)
		return nil
	})

	// The watcher lives until Close, not until the subscribing call returns.
	if err := fw.Start(context.Background()); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch schema: %w", err)
	}
	s.watcher = fw
	return nil
}

func (s *FileSession) Close() error {
	s.mu.Lock()
	fw := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if fw != nil {
		if err := fw.Close(); err != nil {
			logger.Debug("Closing schema watcher: %v", err)
		}
	}
	return s.MemorySession.Close()
}
