// Package navigation exposes the path builder through the three call shapes
// application code uses: direct retrieval, redirects and links, plus a
// wrapper around a host router.
//
// Links never fail: a route that cannot be built renders as an inert "#"
// anchor and the failure is logged. Redirects and router calls return the
// failure to the caller.
package navigation

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/saferoutes/pkg/pathbuilder"
)

// RedirectType hints how the host should record a redirect in history.
type RedirectType string

const (
	RedirectPush    RedirectType = "push"
	RedirectReplace RedirectType = "replace"
)

// RedirectFunc performs a redirect to an already built path.
type RedirectFunc func(path string, kind RedirectType) error

// ErrNoRedirect is returned by Redirect when no RedirectFunc is configured.
var ErrNoRedirect = errors.New("no redirect function configured")

// DefaultRouterCacheSize bounds the number of wrapped routers kept alive.
const DefaultRouterCacheSize = 64

// Options configures a Navigation.
type Options struct {
	// Builder builds every path. Defaults to a builder without locales or
	// route table.
	Builder *pathbuilder.Builder

	// Redirect is the host redirect primitive used by Redirect.
	Redirect RedirectFunc

	Logger *slog.Logger

	// RouterCacheSize bounds the SafeRouter cache.
	RouterCacheSize int
}

// Navigation composes a path builder with host navigation primitives.
type Navigation struct {
	builder  *pathbuilder.Builder
	redirect RedirectFunc
	logger   *slog.Logger
	routers  *lru.Cache[Router, *SafeRouter]
}

// New creates a Navigation.
func New(opts Options) (*Navigation, error) {
	builder := opts.Builder
	if builder == nil {
		builder = pathbuilder.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := opts.RouterCacheSize
	if size <= 0 {
		size = DefaultRouterCacheSize
	}
	routers, err := lru.New[Router, *SafeRouter](size)
	if err != nil {
		return nil, fmt.Errorf("create router cache: %w", err)
	}
	return &Navigation{
		builder:  builder,
		redirect: opts.Redirect,
		logger:   logger,
		routers:  routers,
	}, nil
}

// GetRoute builds the path for pattern.
func (n *Navigation) GetRoute(pattern string, cfg *pathbuilder.Config) (string, error) {
	return n.builder.Build(pattern, cfg)
}

// Redirect builds the path for pattern and hands it to the configured
// redirect primitive.
func (n *Navigation) Redirect(pattern string, cfg *pathbuilder.Config, kind RedirectType) error {
	if n.redirect == nil {
		return ErrNoRedirect
	}
	return n.redirectWith(n.redirect, pattern, cfg, kind)
}

// RedirectHTTP builds the path for pattern and answers r with a temporary
// redirect to it.
func (n *Navigation) RedirectHTTP(w http.ResponseWriter, r *http.Request, pattern string, cfg *pathbuilder.Config) error {
	return n.redirectWith(HTTPRedirect(w, r), pattern, cfg, RedirectReplace)
}

func (n *Navigation) redirectWith(fn RedirectFunc, pattern string, cfg *pathbuilder.Config, kind RedirectType) error {
	if kind == "" {
		kind = RedirectReplace
	}
	path, err := n.builder.Build(pattern, cfg)
	if err != nil {
		return fmt.Errorf("redirect to %s: %w", pattern, err)
	}
	return fn(path, kind)
}

// HTTPRedirect adapts net/http to a RedirectFunc. The redirect type has no
// HTTP equivalent; every redirect is a 307.
func HTTPRedirect(w http.ResponseWriter, r *http.Request) RedirectFunc {
	return func(path string, _ RedirectType) error {
		http.Redirect(w, r, path, http.StatusTemporaryRedirect)
		return nil
	}
}
