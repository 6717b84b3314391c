package routes

import "slices"

// Mapping maps a normalized route path to its config.
type Mapping map[string]*RouteConfig

// Set records cfg under path, merging with any config already there.
func (m Mapping) Set(path string, cfg *RouteConfig) {
	if existing, ok := m[path]; ok {
		m[path] = existing.Merge(cfg)
		return
	}
	m[path] = cfg
}

// Merge folds every route of src into m.
func (m Mapping) Merge(src Mapping) {
	for path, cfg := range src {
		m.Set(path, cfg)
	}
}

// MergeParallel folds the routes discovered under the parallel slot named
// context into m.
//
// Each route is recorded under ParallelRoutes[context] unless the subtree
// already attributed it to a context (the innermost slot names it). The
// slot's own query keys only live on the branch, never on the bare route.
// The top-level omit flag stays the AND over every contributing branch.
func (m Mapping) MergeParallel(src Mapping, context string) {
	for path, cfg := range src {
		incoming := cfg.Clone()
		if len(incoming.ParallelRoutes) == 0 {
			incoming.ParallelRoutes = map[string]*ParallelRouteConfig{
				context: cfg.Branch(),
			}
		}
		incoming.Query = nil
		m.Set(path, incoming)
	}
}

// SortedPaths returns the route paths in lexicographic order.
func (m Mapping) SortedPaths() []string {
	paths := make([]string, 0, len(m))
	for path := range m {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

// Visible returns the sorted paths of the routes that are not omitted.
func (m Mapping) Visible() []string {
	var paths []string
	for _, path := range m.SortedPaths() {
		if !m[path].OmitFromRoutes {
			paths = append(paths, path)
		}
	}
	return paths
}

// Lookup returns the config for path.
func (m Mapping) Lookup(path string) (*RouteConfig, bool) {
	cfg, ok := m[path]
	return cfg, ok
}
