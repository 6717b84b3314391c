package generator

import (
	"log/slog"
	"sync"
)

// HookContext is what the host build passes to a hook.
type HookContext struct {
	// BuildID identifies one build; generation runs at most once per id.
	BuildID string

	// IsServer marks the build phase during which generation runs.
	IsServer bool
}

// Hook is a build-tool integration point.
type Hook func(HookContext) error

// BuildCache records the build ids that already generated. Create one per
// host process; entries never expire.
type BuildCache struct {
	mu   sync.Mutex
	done map[string]struct{}
}

// NewBuildCache creates an empty BuildCache.
func NewBuildCache() *BuildCache {
	return &BuildCache{done: make(map[string]struct{})}
}

// Done reports whether buildID already generated.
func (c *BuildCache) Done(buildID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.done[buildID]
	return ok
}

// Len returns the number of recorded build ids.
func (c *BuildCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.done)
}

// Once runs fn unless buildID is already recorded, and records buildID
// when fn succeeds. Concurrent calls for the same id run fn once.
func (c *BuildCache) Once(buildID string, fn func() error) (ran bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.done[buildID]; ok {
		return false, nil
	}
	if err := fn(); err != nil {
		return true, err
	}
	c.done[buildID] = struct{}{}
	return true, nil
}

// DefaultBuildCache is used by hooks that are not given their own cache.
var DefaultBuildCache = NewBuildCache()

// HookOption configures WithSafeRoutes.
type HookOption func(*hookOptions)

type hookOptions struct {
	cache  *BuildCache
	logger *slog.Logger
}

// WithBuildCache makes the hook record builds in cache.
func WithBuildCache(cache *BuildCache) HookOption {
	return func(o *hookOptions) {
		o.cache = cache
	}
}

// WithHookLogger sets the hook logger.
func WithHookLogger(logger *slog.Logger) HookOption {
	return func(o *hookOptions) {
		o.logger = logger
	}
}

// WithSafeRoutes returns a hook that generates routes once per build id
// during the server phase and then calls next, if any. A generation error
// is returned without calling next so the build aborts.
func WithSafeRoutes(next Hook, cfg Config, opts ...HookOption) Hook {
	o := hookOptions{cache: DefaultBuildCache, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	return func(ctx HookContext) error {
		if ctx.IsServer {
			ran, err := o.cache.Once(ctx.BuildID, func() error {
				g, err := New(cfg, o.logger)
				if err != nil {
					return err
				}
				defer g.Close()
				_, err = g.Generate(ctx.BuildID)
				return err
			})
			if err != nil {
				o.logger.Error("error generating routes for this build",
					"build_id", ctx.BuildID,
					"error", err)
				return err
			}
			if !ran && cfg.Verbose {
				o.logger.Info("routes already generated for this build", "build_id", ctx.BuildID)
			}
		}

		if next != nil {
			return next(ctx)
		}
		return nil
	}
}
