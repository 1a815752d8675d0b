package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tristendillon/modelsync/core/cache"
	"github.com/tristendillon/modelsync/core/logger"
	"github.com/tristendillon/modelsync/core/models"
)

// Writer writes generated files only when their content differs from what is
// on disk, and reports each written file once.
type Writer struct {
	wd      string
	cache   *cache.ContentCache
	written []string
}

// NewWriter reports paths relative to wd. An empty wd reports them as given.
func NewWriter(wd string) *Writer {
	return &Writer{
		wd:    wd,
		cache: cache.NewContentCache(),
	}
}

// Read returns the current content of path, or nil when the file does not
// exist, and records it in the cache.
func (w *Writer) Read(path string) (*string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		w.cache.Remove(path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	w.cache.Record(path, data)
	content := string(data)
	return &content, nil
}

// Write stores f.Content at f.Path unless the file on disk already holds
// exactly that content. The file is read again first and f.Previous is set to
// what was found, so a file edited since an earlier Read is still corrected.
// It reports whether the file was written.
func (w *Writer) Write(f *models.GeneratedFile) (bool, error) {
	previous, err := w.Read(f.Path)
	if err != nil {
		return false, err
	}
	f.Previous = previous

	data := []byte(f.Content)
	if previous != nil && w.cache.Matches(f.Path, data) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), os.ModePerm); err != nil {
		return false, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	w.cache.Record(f.Path, data)

	rel := w.relative(f.Path)
	w.written = append(w.written, rel)
	logger.Info("  %s", rel)
	return true, nil
}

// Written returns the reported paths since the last Reset.
func (w *Writer) Written() []string {
	return append([]string(nil), w.written...)
}

func (w *Writer) Reset() {
	w.written = nil
}

func (w *Writer) Cache() *cache.ContentCache {
	return w.cache
}

func (w *Writer) relative(path string) string {
	if w.wd == "" {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(w.wd, abs)
	if err != nil {
		return path
	}
	return rel
}
