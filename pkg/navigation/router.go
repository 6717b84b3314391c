package navigation

import (
	"fmt"

	"github.com/gnana997/saferoutes/pkg/pathbuilder"
)

// Router is the host's navigation handle. Implementations must be
// comparable (typically a pointer) since wrapped routers are cached by
// identity.
type Router interface {
	Push(path string) error
	Replace(path string) error
	Prefetch(path string) error
	Back()
	Forward()
	Refresh()
}

// SafeRouter wraps a Router so that Push, Replace and Prefetch take a route
// pattern and config instead of a raw path. It has no exported fields and
// never changes after construction.
type SafeRouter struct {
	nav    *Navigation
	router Router
}

// Router returns the SafeRouter wrapping r. Repeated calls with the same r
// return the same *SafeRouter while it stays in the cache.
func (n *Navigation) Router(r Router) *SafeRouter {
	if sr, ok := n.routers.Get(r); ok {
		return sr
	}
	sr := &SafeRouter{nav: n, router: r}
	// Another goroutine may have raced us; keep whichever landed first.
	if prev, ok, _ := n.routers.PeekOrAdd(r, sr); ok {
		return prev
	}
	return sr
}

// Push builds the path and pushes it onto the history.
func (s *SafeRouter) Push(pattern string, cfg *pathbuilder.Config) error {
	return s.do("push", pattern, cfg, s.router.Push)
}

// Replace builds the path and replaces the current history entry.
func (s *SafeRouter) Replace(pattern string, cfg *pathbuilder.Config) error {
	return s.do("replace", pattern, cfg, s.router.Replace)
}

// Prefetch builds the path and asks the host to prefetch it.
func (s *SafeRouter) Prefetch(pattern string, cfg *pathbuilder.Config) error {
	return s.do("prefetch", pattern, cfg, s.router.Prefetch)
}

// Back forwards to the wrapped router.
func (s *SafeRouter) Back() { s.router.Back() }

// Forward forwards to the wrapped router.
func (s *SafeRouter) Forward() { s.router.Forward() }

// Refresh forwards to the wrapped router.
func (s *SafeRouter) Refresh() { s.router.Refresh() }

// Unwrap returns the wrapped router.
func (s *SafeRouter) Unwrap() Router { return s.router }

func (s *SafeRouter) do(op, pattern string, cfg *pathbuilder.Config, fn func(string) error) error {
	path, err := s.nav.builder.Build(pattern, cfg)
	if err != nil {
		s.nav.logger.Error("failed to build route",
			"op", op,
			"route", pattern,
			"error", err)
		return fmt.Errorf("failed to %s route %s: %w", op, pattern, err)
	}
	return fn(path)
}
