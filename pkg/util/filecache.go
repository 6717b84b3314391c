// SourceCache keeps page config fragments memory-mapped between generation
// passes.
//
// Watch mode and the MCP server re-collect the whole route tree on every
// change, but only a handful of fragments actually change between passes.
// Each entry remembers the size and modification time it was mapped at and
// is remapped only when those differ.
//
// **Safety Features:**
//   - Optional MaxFiles limit; beyond it reads bypass the cache
//   - Graceful fallback to os.ReadFile if mmap fails
//   - Thread-safe with sync.RWMutex (parallel reads, exclusive writes)
package util

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// SourceCache serves file contents from memory-mapped regions.
type SourceCache interface {
	// Read returns the current contents of the file at path. The returned
	// slice is owned by the caller.
	//
	// Errors from stat/open are wrapped, so errors.Is(err, fs.ErrNotExist)
	// identifies a missing file.
	Read(path string) ([]byte, error)

	// Invalidate drops any cached mapping for path.
	Invalidate(path string)

	// Size returns number of currently cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() SourceCacheStats

	// Close unmaps all files and releases resources.
	Close() error
}

// SourceCacheConfig controls SourceCache behavior.
type SourceCacheConfig struct {
	// MaxFiles is the maximum number of files to keep mapped. Zero means
	// unlimited.
	MaxFiles int

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultSourceCacheConfig returns limits that cover an app directory with
// a config fragment next to every page.
func DefaultSourceCacheConfig() *SourceCacheConfig {
	return &SourceCacheConfig{
		MaxFiles: 4096,
	}
}

// SourceCacheStats tracks cache performance metrics.
type SourceCacheStats struct {
	// CacheHits counts reads served from an unchanged mapping.
	CacheHits int64

	// CacheMisses counts reads that had to (re)map the file.
	CacheMisses int64

	// Remaps counts misses caused by a changed file.
	Remaps int64

	// MmapFailures counts files read through the os.ReadFile fallback.
	MmapFailures int64

	// FilesCached is the current number of cached files.
	FilesCached int
}

// mappedSource holds no file descriptor; the mapping outlives the file it
// was created from.
type mappedSource struct {
	data    mmap.MMap
	mapped  bool
	size    int64
	modTime time.Time
}

func (m *mappedSource) release() error {
	if !m.mapped {
		return nil
	}
	m.mapped = false
	return m.data.Unmap()
}

// NewSourceCache creates a new SourceCache. If config is nil, uses
// DefaultSourceCacheConfig().
func NewSourceCache(config *SourceCacheConfig) SourceCache {
	if config == nil {
		config = DefaultSourceCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &sourceCacheImpl{
		config:  config,
		logger:  logger,
		entries: make(map[string]*mappedSource),
	}
}

type sourceCacheImpl struct {
	config *SourceCacheConfig
	logger *slog.Logger

	entries map[string]*mappedSource
	mu      sync.RWMutex

	stats   SourceCacheStats
	statsMu sync.Mutex
}

func (sc *sourceCacheImpl) Read(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("read %s: is a directory", path)
	}

	// Fast path: unchanged since last mapping
	sc.mu.RLock()
	if entry, ok := sc.entries[path]; ok && entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
		data := bytes.Clone(entry.data)
		sc.mu.RUnlock()
		sc.record(func(s *SourceCacheStats) { s.CacheHits++ })
		return nonNil(data), nil
	}
	sc.mu.RUnlock()

	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Double-check: another goroutine might have remapped it
	if entry, ok := sc.entries[path]; ok {
		if entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
			sc.record(func(s *SourceCacheStats) { s.CacheHits++ })
			return nonNil(bytes.Clone(entry.data)), nil
		}
		if err := entry.release(); err != nil {
			sc.logger.Warn("failed to release stale mapping", "path", path, "error", err)
		}
		delete(sc.entries, path)
		sc.record(func(s *SourceCacheStats) { s.Remaps++ })
	}
	sc.record(func(s *SourceCacheStats) { s.CacheMisses++ })

	if sc.config.MaxFiles > 0 && len(sc.entries) >= sc.config.MaxFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return data, nil
	}

	entry, err := sc.load(path)
	if err != nil {
		return nil, err
	}
	sc.entries[path] = entry
	return nonNil(bytes.Clone(entry.data)), nil
}

// load maps path, falling back to os.ReadFile if mmap fails. The file is
// closed before load returns.
//
// Must be called while holding mu.Lock.
func (sc *sourceCacheImpl) load(path string) (*mappedSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	// Empty files cannot be mapped
	if info.Size() == 0 {
		return &mappedSource{modTime: info.ModTime()}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		sc.logger.Warn("mmap failed, using fallback", "path", path, "error", err)
		sc.record(func(s *SourceCacheStats) { s.MmapFailures++ })

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}
		return &mappedSource{data: mmap.MMap(raw), size: info.Size(), modTime: info.ModTime()}, nil
	}

	return &mappedSource{data: data, mapped: true, size: info.Size(), modTime: info.ModTime()}, nil
}

func (sc *sourceCacheImpl) Invalidate(path string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if entry, ok := sc.entries[path]; ok {
		if err := entry.release(); err != nil {
			sc.logger.Warn("failed to release mapping", "path", path, "error", err)
		}
		delete(sc.entries, path)
	}
}

func (sc *sourceCacheImpl) Size() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.entries)
}

func (sc *sourceCacheImpl) Stats() SourceCacheStats {
	cached := sc.Size()

	sc.statsMu.Lock()
	defer sc.statsMu.Unlock()
	stats := sc.stats
	stats.FilesCached = cached
	return stats
}

func (sc *sourceCacheImpl) Close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var errs []error
	for path, entry := range sc.entries {
		if err := entry.release(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", path, err))
		}
	}
	sc.entries = make(map[string]*mappedSource)

	sc.logger.Debug("source cache closed",
		"cache_hits", sc.stats.CacheHits,
		"cache_misses", sc.stats.CacheMisses,
		"remaps", sc.stats.Remaps)

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

func (sc *sourceCacheImpl) record(fn func(*SourceCacheStats)) {
	sc.statsMu.Lock()
	fn(&sc.stats)
	sc.statsMu.Unlock()
}

// nonNil keeps empty files distinguishable from read failures.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
