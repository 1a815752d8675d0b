package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tristendillon/modelsync/core/config"
	"github.com/tristendillon/modelsync/core/logger"
	"github.com/tristendillon/modelsync/core/models"
	"github.com/tristendillon/modelsync/core/schema"
	"github.com/tristendillon/modelsync/core/writer"
)

// PassResult describes one regeneration pass.
type PassResult struct {
	Pass    int
	Marker  string
	Modules int
	Written []string
	// Files holds every file of the pass, written or not, with the content
	// found on disk before the pass.
	Files []models.GeneratedFile
}

// ModelGenerator materializes schema modules into declarations and stub
// files under the configured model location.
type ModelGenerator struct {
	cfg      *config.Config
	opts     Options
	location string
	writer   *writer.Writer
	merger   StubMerger
	passes   int
	now      func() time.Time
}

// NewModelGenerator resolves the model location against wd and reports
// written files relative to it.
func NewModelGenerator(cfg *config.Config, wd string) *ModelGenerator {
	location := cfg.Output.Location
	if !filepath.IsAbs(location) {
		location = filepath.Join(wd, location)
	}
	opts := OptionsFromConfig(cfg.Output)

	return &ModelGenerator{
		cfg:      cfg,
		opts:     opts,
		location: location,
		writer:   writer.NewWriter(wd),
		merger:   NewPatternMerger(opts),
		now:      time.Now,
	}
}

// SetStubMerger replaces the strategy used to patch stub files.
func (g *ModelGenerator) SetStubMerger(m StubMerger) {
	g.merger = m
}

func (g *ModelGenerator) Location() string {
	return g.location
}

// Passes returns the number of completed passes.
func (g *ModelGenerator) Passes() int {
	return g.passes
}

// Generate runs one pass over every non-system module of ws. A failure stops
// the pass; files written before it stay written.
func (g *ModelGenerator) Generate(ws *models.Workspace) (*PassResult, error) {
	logger.Info("Updating on %s...", g.now().Format("2006-01-02 15:04:05"))
	g.writer.Reset()

	modules := ws.UserModules()
	var files []models.GeneratedFile
	for _, module := range modules {
		generated, err := g.generateModule(module)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", module.Name, err)
		}
		files = append(files, generated...)
	}

	g.passes++
	marker := passMarker(g.passes)
	logger.Info("Done%s", marker)
	g.writer.Cache().LogStats()

	return &PassResult{
		Pass:    g.passes,
		Marker:  marker,
		Modules: len(modules),
		Written: g.writer.Written(),
		Files:   files,
	}, nil
}

// generateModule writes the declarations file, then the stub file.
func (g *ModelGenerator) generateModule(module *models.Module) ([]models.GeneratedFile, error) {
	declarations, err := GenerateDeclarations(module, g.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate declarations: %w", err)
	}

	stub := models.GeneratedFile{Path: filepath.Join(g.location, StubFileName(module, g.opts))}
	previous, err := g.writer.Read(stub.Path)
	if err != nil {
		return nil, err
	}
	stub.Content, err = g.merger.Merge(module, previous)
	if err != nil {
		return nil, fmt.Errorf("failed to merge stubs: %w", err)
	}

	files := []models.GeneratedFile{
		{Path: filepath.Join(g.location, DeclarationsFileName(module)), Content: declarations},
		stub,
	}
	for i := range files {
		if _, err := g.writer.Write(&files[i]); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// Update fetches a snapshot and runs a single pass.
func (g *ModelGenerator) Update(ctx context.Context, session schema.Session) (*PassResult, error) {
	ws, err := session.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema: %w", err)
	}

	logger.Info("Updating schema changes for workspace '%s' (%s)...", ws.Name, ws.ID)
	logger.Info("Source code model location: %s", g.cfg.Output.Location)

	return g.Generate(ws)
}

// passMarker makes consecutive passes distinguishable in a scrolling
// terminal: nothing for the first, a count up to four, then a spinner.
func passMarker(n int) string {
	switch {
	case n <= 1:
		return ""
	case n <= 4:
		return fmt.Sprintf(" #%d", n)
	default:
		return " " + string("-\\|/"[n%4])
	}
}
