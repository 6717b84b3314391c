package pageconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/saferoutes/pkg/parser"
	"github.com/gnana997/saferoutes/pkg/parser/queries"
	"github.com/gnana997/saferoutes/pkg/util"
)

// DefaultCacheSize bounds the number of parsed fragments kept in memory.
const DefaultCacheSize = 1024

// Options configures a Reader. Zero values select defaults; a Reader
// creates and owns whatever collaborators are not supplied.
type Options struct {
	Logger    *slog.Logger
	Parsers   *parser.ParserManager
	Sources   util.SourceCache
	CacheSize int

	// ParserPoolSize bounds the parsers per grammar of a reader-owned
	// ParserManager. Zero sizes the pool from the CPU count.
	ParserPoolSize int
}

// Stats reports the reader's cache and parser usage.
type Stats struct {
	Configs int
	Parser  parser.ParserStats
	Sources util.SourceCacheStats
}

type cachedConfig struct {
	size    int64
	modTime time.Time
	config  *PageConfig
}

// Reader extracts PageConfig values from fragment files. Results are cached
// per path and reused while the file's size and modification time are
// unchanged. Safe for concurrent use.
type Reader struct {
	parsers *parser.ParserManager
	queries *queries.QueryManager
	sources util.SourceCache
	cache   *lru.Cache[string, cachedConfig]
	logger  *slog.Logger

	ownsParsers bool
	ownsSources bool
}

// NewReader creates a Reader. Close must be called to release parsers and
// mapped files the reader owns.
func NewReader(opts Options) (*Reader, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New[string, cachedConfig](size)
	if err != nil {
		return nil, fmt.Errorf("create config cache: %w", err)
	}

	r := &Reader{
		parsers: opts.Parsers,
		sources: opts.Sources,
		cache:   cache,
		logger:  logger,
	}
	if r.parsers == nil {
		r.parsers = parser.NewParserManager(logger, opts.ParserPoolSize)
		r.ownsParsers = true
	}
	if r.sources == nil {
		sourceCfg := util.DefaultSourceCacheConfig()
		sourceCfg.Logger = logger
		r.sources = util.NewSourceCache(sourceCfg)
		r.ownsSources = true
	}
	r.queries = queries.NewQueryManager(r.parsers, logger)

	return r, nil
}

// Read returns the config declared in the fragment at path.
//
// A missing file yields (nil, nil). A file without a recognizable config
// binding also yields (nil, nil). Any other I/O or parse failure is
// returned; callers decide whether it is fatal.
func (r *Reader) Read(path string) (*PageConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat page config %s: %w", path, err)
	}

	if cached, ok := r.cache.Get(path); ok && cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
		return cached.config, nil
	}

	src, err := r.sources.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read page config %s: %w", path, err)
	}

	grammar, ok := parser.DetectGrammar(path)
	if !ok {
		return nil, fmt.Errorf("unsupported page config file %s", path)
	}

	cfg, err := r.ParseSource(src, grammar)
	if err != nil {
		return nil, fmt.Errorf("parse page config %s: %w", path, err)
	}

	r.cache.Add(path, cachedConfig{size: info.Size(), modTime: info.ModTime(), config: cfg})
	r.logger.Debug("parsed page config", "path", path, "found", cfg != nil)

	return cfg, nil
}

// ParseSource extracts the config from in-memory source. It returns
// (nil, nil) when the source declares no top-level config object.
func (r *Reader) ParseSource(src []byte, grammar parser.Grammar) (*PageConfig, error) {
	tree, err := r.parsers.Parse(src, grammar)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	query, err := r.queries.GetQuery(grammar, queries.QueryTypeBindings)
	if err != nil {
		return nil, err
	}
	matches, err := r.queries.ExecuteQuery(tree, query, src)
	if err != nil {
		return nil, err
	}

	for _, m := range matches {
		name, ok := m.Capture("binding.name")
		if !ok || name.Text != bindingName {
			continue
		}
		value, ok := m.Capture("binding.value")
		if !ok {
			continue
		}
		if obj := unwrap(value.Node); obj != nil && obj.Kind() == "object" {
			return extractConfig(obj, src), nil
		}
	}

	return nil, nil
}

// Invalidate forgets the cached result for path.
func (r *Reader) Invalidate(path string) {
	r.cache.Remove(path)
	r.sources.Invalidate(path)
}

// Len returns the number of cached fragments.
func (r *Reader) Len() int {
	return r.cache.Len()
}

// Stats returns a snapshot of the reader's counters.
func (r *Reader) Stats() Stats {
	return Stats{
		Configs: r.cache.Len(),
		Parser:  r.parsers.GetStats(),
		Sources: r.sources.Stats(),
	}
}

// Close releases compiled queries plus the parsers and mapped files the
// reader created itself.
func (r *Reader) Close() error {
	var errs []error
	if err := r.queries.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.ownsParsers {
		if err := r.parsers.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.ownsSources {
		if err := r.sources.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.cache.Purge()
	return errors.Join(errs...)
}
