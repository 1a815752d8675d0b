package schema

import (
	"fmt"
	"path/filepath"

	"github.com/tristendillon/modelsync/core/config"
)

// Open creates the session described by the schema section of cfg. Relative
// schema paths resolve against wd. File sessions only fold the events of a
// single save: watch.debounce is applied by the watch loop.
func Open(cfg *config.Config, wd string) (Session, error) {
	switch cfg.Schema.Source {
	case config.SourceFile, config.SourceCUE:
		path := cfg.Schema.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(wd, path)
		}
		return NewFileSession(path, FileEventDebounce)
	case config.SourceRemote:
		return NewRemoteSession(cfg.Schema.URL), nil
	default:
		return nil, fmt.Errorf("unsupported schema source %q", cfg.Schema.Source)
	}
}
