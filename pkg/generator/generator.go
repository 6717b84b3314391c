// Package generator runs a full generation pass: collect the route table
// from the page directory, render it and write the type file (and,
// optionally, a JSON manifest).
package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gnana997/saferoutes/pkg/collector"
	"github.com/gnana997/saferoutes/pkg/emitter"
	"github.com/gnana997/saferoutes/pkg/pageconfig"
	"github.com/gnana997/saferoutes/pkg/routes"
)

// Result describes one generation pass.
type Result struct {
	BuildID       string
	OutPath       string
	ManifestPath  string
	Routes        routes.Mapping
	VisibleRoutes int
	Duration      time.Duration
}

// Generator owns the collaborators of repeated generation passes. Safe for
// concurrent use, though passes are expected to be sequential.
type Generator struct {
	cfg       Config
	paths     Paths
	reader    *pageconfig.Reader
	collector *collector.Collector
	emitter   *emitter.Emitter
	now       func() time.Time
	logger    *slog.Logger
}

// New resolves cfg and prepares a Generator. It fails if the page
// directory does not exist.
func New(cfg Config, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	paths, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	if err := paths.CheckPagesDir(); err != nil {
		return nil, err
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	reader, err := pageconfig.NewReader(pageconfig.Options{Logger: logger, ParserPoolSize: cfg.ParserPoolSize})
	if err != nil {
		return nil, err
	}
	coll, err := collector.New(reader, collector.Options{Exclude: cfg.Exclude, Logger: logger})
	if err != nil {
		reader.Close()
		return nil, err
	}

	var locales []string
	if cfg.WithI18N {
		locales = cfg.Locales
	}

	g := &Generator{
		cfg:       cfg,
		paths:     paths,
		reader:    reader,
		collector: coll,
		emitter:   emitter.New(emitter.Options{Now: now, Locales: locales}),
		now:       now,
		logger:    logger,
	}

	if cfg.Verbose {
		logger.Info("generator configured",
			"root", paths.RootDir,
			"src_directory", paths.UseSrc,
			"pages", paths.PagesDir,
			"out", paths.OutPath)
	}

	return g, nil
}

// Paths returns the resolved locations.
func (g *Generator) Paths() Paths {
	return g.paths
}

// Collect walks the page directory and returns the route table without
// writing anything.
func (g *Generator) Collect() (routes.Mapping, error) {
	return g.collector.Collect(g.paths.PagesDir)
}

// Render returns the type file content for mapping.
func (g *Generator) Render(mapping routes.Mapping) string {
	return g.emitter.Emit(mapping)
}

// Generate runs one pass and writes its output. An empty buildID gets a
// random one.
func (g *Generator) Generate(buildID string) (*Result, error) {
	start := time.Now()
	if buildID == "" {
		buildID = uuid.NewString()
	}

	mapping, err := g.Collect()
	if err != nil {
		return nil, fmt.Errorf("collect routes: %w", err)
	}

	if err := writeFile(g.paths.OutPath, []byte(g.Render(mapping))); err != nil {
		return nil, err
	}

	if g.paths.ManifestPath != "" {
		manifest := routes.NewManifest(mapping, buildID, g.now())
		if err := routes.WriteManifest(g.paths.ManifestPath, manifest); err != nil {
			return nil, err
		}
	}

	res := &Result{
		BuildID:       buildID,
		OutPath:       g.paths.OutPath,
		ManifestPath:  g.paths.ManifestPath,
		Routes:        mapping,
		VisibleRoutes: len(mapping.Visible()),
		Duration:      time.Since(start),
	}

	g.logger.Info("routes type generated",
		"out", res.OutPath,
		"routes", res.VisibleRoutes,
		"build_id", buildID,
		"duration", res.Duration)

	stats := g.reader.Stats()
	g.logger.Debug("page config reader",
		"configs_cached", stats.Configs,
		"parses", stats.Parser.ParsesCalled,
		"parse_errors", stats.Parser.ParseErrors,
		"parsers", stats.Parser.ParsersCreated,
		"source_hits", stats.Sources.CacheHits,
		"source_misses", stats.Sources.CacheMisses)

	return res, nil
}

// Invalidate drops any cached state for a changed file.
func (g *Generator) Invalidate(path string) {
	g.reader.Invalidate(path)
}

// ReaderStats returns the page config reader's counters.
func (g *Generator) ReaderStats() pageconfig.Stats {
	return g.reader.Stats()
}

// Close releases the generator's parsers and caches.
func (g *Generator) Close() error {
	return g.reader.Close()
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// IsPagesDirNotFound reports whether err means the page directory is
// missing.
func IsPagesDirNotFound(err error) bool {
	return errors.Is(err, ErrPagesDirNotFound)
}
