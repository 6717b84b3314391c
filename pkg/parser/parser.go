package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/gnana997/saferoutes/pkg/util"
)

// ParserManager hands out tree-sitter parses for the grammars used by page
// config fragments, pooling parsers per grammar.
//
// Memory Management:
// - Parser pools are created lazily on first use per grammar
// - ParserManager owns the pools and must be closed via Close()
// - Callers own Tree instances and must call tree.Close() after use
//
// Example:
//
//	manager := NewParserManager(logger, 0)
//	defer manager.Close()
//
//	grammar, _ := DetectGrammar("app/page.config.ts")
//	tree, err := manager.Parse(src, grammar)
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	pools    map[Grammar]*parserPool
	poolSize int
	mutex    sync.RWMutex
	logger   *slog.Logger

	stats struct {
		parsesCalled int
		parseErrors  int
	}
}

// NewParserManager creates a new ParserManager keeping up to poolSize
// parsers per grammar; zero selects util.GetOptimalPoolSize().
//
// The returned manager must be closed via Close() to free resources.
func NewParserManager(logger *slog.Logger, poolSize int) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &ParserManager{
		pools:    make(map[Grammar]*parserPool),
		poolSize: util.GetOptimalPoolSizeWithOverride(poolSize),
		logger:   logger,
	}
}

// Parse parses source with the given grammar.
//
// Returns a Tree that MUST be closed by the caller. Trees containing syntax
// errors are still returned; callers extract whatever is well formed.
func (pm *ParserManager) Parse(source []byte, grammar Grammar) (*ts.Tree, error) {
	if grammar.Lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	pool, err := pm.getOrCreatePool(grammar)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", grammar, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := parser.Parse(source, nil)
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser.Parse returned nil tree")
	}

	hasError := tree.RootNode().HasError()

	pm.mutex.Lock()
	pm.stats.parsesCalled++
	if hasError {
		pm.stats.parseErrors++
	}
	pm.mutex.Unlock()

	if hasError {
		pm.logger.Debug("parse tree contains errors", "grammar", grammar.String())
	}

	return tree, nil
}

// Close releases all parser pool resources. After Close the manager cannot
// be used.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	for grammar, pool := range pm.pools {
		pool.close()
		pm.logger.Debug("closed parser pool", "grammar", grammar.String())
	}
	pm.pools = make(map[Grammar]*parserPool)

	pm.logger.Debug("closing ParserManager",
		"parses_called", pm.stats.parsesCalled,
		"parse_errors", pm.stats.parseErrors)

	return nil
}

// getOrCreatePool returns an existing parser pool or creates a new one.
// Thread-safe using double-checked locking pattern.
func (pm *ParserManager) getOrCreatePool(grammar Grammar) (*parserPool, error) {
	pm.mutex.RLock()
	pool, exists := pm.pools[grammar]
	pm.mutex.RUnlock()
	if exists {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pool, exists = pm.pools[grammar]; exists {
		return pool, nil
	}

	langPtr, err := pm.GetLanguagePointer(grammar)
	if err != nil {
		return nil, err
	}

	pool = newParserPool(grammar, langPtr, pm.poolSize, pm.logger)
	pm.pools[grammar] = pool

	pm.logger.Debug("created new parser pool",
		"grammar", grammar.String(),
		"maxSize", pm.poolSize)

	return pool, nil
}

// GetLanguagePointer returns the tree-sitter grammar for g. QueryManager
// uses it to compile queries against the same grammar the trees came from.
func (pm *ParserManager) GetLanguagePointer(g Grammar) (unsafe.Pointer, error) {
	switch g.Lang {
	case LanguageTypeScript:
		if g.JSX {
			return ts_typescript.LanguageTSX(), nil
		}
		return ts_typescript.LanguageTypescript(), nil
	case LanguageJavaScript:
		return ts_javascript.Language(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", g.Lang)
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	created := 0
	for _, pool := range pm.pools {
		created += pool.getCreatedCount()
	}

	return ParserStats{
		ParsersCreated: created,
		ParsesCalled:   pm.stats.parsesCalled,
		ParseErrors:    pm.stats.parseErrors,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	ParsersCreated int
	ParsesCalled   int
	// ParseErrors counts trees that contained at least one error node.
	ParseErrors int
}
