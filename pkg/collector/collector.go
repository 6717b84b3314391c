// Package collector walks an app directory and builds the route table.
//
// Directory conventions:
//   - (group)   organizes routes without adding a path segment
//   - @slot     parallel route; adds no segment and names a context
//   - _private  and api are skipped entirely
//   - page.tsx  (or .ts/.jsx/.js) marks a route leaf; a sibling
//     page.config.ts declares its query keys and omit flag
package collector

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/saferoutes/pkg/pageconfig"
	"github.com/gnana997/saferoutes/pkg/routes"
)

// apiDir is the reserved folder for API handlers, which are not pages.
const apiDir = "api"

// ConfigReader reads page config fragments.
type ConfigReader interface {
	Read(path string) (*pageconfig.PageConfig, error)
}

// Options configures a Collector.
type Options struct {
	// Exclude holds doublestar patterns matched against slash-separated
	// paths relative to the root directory. Matching entries are skipped.
	Exclude []string

	Logger *slog.Logger
}

// Collector walks a route tree. It holds no per-walk state, so one
// Collector may serve repeated passes.
type Collector struct {
	reader  ConfigReader
	exclude []string
	logger  *slog.Logger
}

// New creates a Collector reading fragments through reader.
func New(reader ConfigReader, opts Options) (*Collector, error) {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		reader:  reader,
		exclude: opts.Exclude,
		logger:  logger,
	}, nil
}

// Collect walks rootDir and returns the route table.
//
// An unreadable directory aborts the walk. A fragment that cannot be read
// is logged and its route kept without config.
func (c *Collector) Collect(rootDir string) (routes.Mapping, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("page directory %s: %w", rootDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("page directory %s is not a directory", rootDir)
	}

	w := walk{Collector: c, root: rootDir}
	mapping, err := w.dir(rootDir, "", "")
	if err != nil {
		return nil, err
	}

	c.logger.Debug("collected routes",
		"root", rootDir,
		"pages", w.pages,
		"routes", len(mapping))

	return mapping, nil
}

type walk struct {
	*Collector
	root  string
	pages int
}

// dir collects the routes below dir. base is the accumulated route path
// and context the active parallel slot name, if any.
func (w *walk) dir(dir, base, context string) (routes.Mapping, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	mapping := routes.Mapping{}
	for _, entry := range entries {
		name := entry.Name()
		if w.skip(dir, name) {
			continue
		}
		full := filepath.Join(dir, name)

		switch {
		case entry.IsDir() && isRouteGroup(name):
			sub, err := w.dir(full, base, context)
			if err != nil {
				return nil, err
			}
			mapping.Merge(sub)

		case entry.IsDir() && isParallelSlot(name):
			slot := name[1:]
			sub, err := w.dir(full, base, slot)
			if err != nil {
				return nil, err
			}
			mapping.MergeParallel(sub, slot)

		case entry.IsDir():
			sub, err := w.dir(full, base+"/"+name, context)
			if err != nil {
				return nil, err
			}
			mapping.Merge(sub)

		case pageconfig.IsPageFile(name):
			w.pages++
			routePath := routes.NormalizePath(base)
			mapping.Set(routePath, w.page(full, routePath, context))
		}
	}

	return mapping, nil
}

// page builds the config of one page file.
func (w *walk) page(pagePath, routePath, context string) *routes.RouteConfig {
	fragment := pageconfig.FragmentPath(pagePath)

	pc, err := w.reader.Read(fragment)
	if err != nil {
		w.logger.Warn("failed to read page config, continuing without it",
			"path", fragment,
			"error", err)
		pc = nil
	}

	cfg := &routes.RouteConfig{
		Params:         routes.ParamsFromPath(routePath),
		Query:          pc.Query(),
		OmitFromRoutes: pc.Omit(),
	}
	if context != "" {
		cfg.ParallelRoutes = map[string]*routes.ParallelRouteConfig{
			context: cfg.Branch(),
		}
	}

	w.logger.Debug("found page",
		"route", routePath,
		"context", context,
		"config", pc != nil)

	return cfg
}

func (w *walk) skip(dir, name string) bool {
	if strings.HasPrefix(name, "_") || name == apiDir {
		return true
	}
	if len(w.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.root, filepath.Join(dir, name))
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func isRouteGroup(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")")
}

func isParallelSlot(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, "@")
}
