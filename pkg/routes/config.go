package routes

import "slices"

// Param is one path parameter bound by a bracketed segment.
type Param struct {
	Name string      `json:"name"`
	Kind SegmentKind `json:"kind"`
}

// Optional reports whether the parameter may be left out entirely.
func (p Param) Optional() bool {
	return p.Kind == SegmentOptionalCatchAll
}

// Params is an ordered parameter list, in the order the segments appear
// in the route path.
type Params []Param

// Set returns ps with p added, or with the existing entry of the same name
// overwritten in place.
func (ps Params) Set(p Param) Params {
	for i := range ps {
		if ps[i].Name == p.Name {
			ps[i] = p
			return ps
		}
	}
	return append(ps, p)
}

// Get returns the parameter with the given name.
func (ps Params) Get(name string) (Param, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// AllOptional reports whether every parameter is an optional catch-all.
// An empty list is not considered all-optional.
func (ps Params) AllOptional() bool {
	if len(ps) == 0 {
		return false
	}
	for _, p := range ps {
		if !p.Optional() {
			return false
		}
	}
	return true
}

// Merge overwrites by key: parameters from other win.
func (ps Params) Merge(other Params) Params {
	out := make(Params, len(ps), len(ps)+len(other))
	copy(out, ps)
	for _, p := range other {
		out = out.Set(p)
	}
	return out
}

// QueryConfig lists the typed query keys of a route.
type QueryConfig struct {
	Required []string `json:"required,omitempty"`
	Optional []string `json:"optional,omitempty"`
}

// Empty reports whether no typed query keys are declared.
func (q *QueryConfig) Empty() bool {
	return q == nil || (len(q.Required) == 0 && len(q.Optional) == 0)
}

// Union merges two query configs, keeping first-seen order and dropping
// duplicates. A nil result means neither side declared anything.
func (q *QueryConfig) Union(other *QueryConfig) *QueryConfig {
	if q == nil && other == nil {
		return nil
	}
	var a, b QueryConfig
	if q != nil {
		a = *q
	}
	if other != nil {
		b = *other
	}
	return &QueryConfig{
		Required: unionStrings(a.Required, b.Required),
		Optional: unionStrings(a.Optional, b.Optional),
	}
}

func (q *QueryConfig) clone() *QueryConfig {
	if q == nil {
		return nil
	}
	return &QueryConfig{
		Required: append([]string(nil), q.Required...),
		Optional: append([]string(nil), q.Optional...),
	}
}

func unionStrings(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// ParallelRouteConfig is the per-context view of a route reached through a
// parallel slot.
type ParallelRouteConfig struct {
	Params         Params       `json:"params,omitempty"`
	Query          *QueryConfig `json:"query,omitempty"`
	OmitFromRoutes bool         `json:"omitFromRoutes,omitempty"`
}

// Merge combines two branches of the same context using the same rules as
// RouteConfig.Merge.
func (p *ParallelRouteConfig) Merge(other *ParallelRouteConfig) *ParallelRouteConfig {
	if p == nil {
		return other.clone()
	}
	if other == nil {
		return p.clone()
	}
	return &ParallelRouteConfig{
		Params:         p.Params.Merge(other.Params),
		Query:          p.Query.Union(other.Query),
		OmitFromRoutes: p.OmitFromRoutes && other.OmitFromRoutes,
	}
}

func (p *ParallelRouteConfig) clone() *ParallelRouteConfig {
	if p == nil {
		return nil
	}
	return &ParallelRouteConfig{
		Params:         append(Params(nil), p.Params...),
		Query:          p.Query.clone(),
		OmitFromRoutes: p.OmitFromRoutes,
	}
}

// RouteConfig describes one normalized route path.
//
// A populated ParallelRoutes means two or more slot branches converge on
// the same path; the route is then discriminated by context.
type RouteConfig struct {
	Params         Params                          `json:"params,omitempty"`
	Query          *QueryConfig                    `json:"query,omitempty"`
	OmitFromRoutes bool                            `json:"omitFromRoutes,omitempty"`
	ParallelRoutes map[string]*ParallelRouteConfig `json:"parallelRoutes,omitempty"`
}

// Branch returns the per-context view of this config.
func (c *RouteConfig) Branch() *ParallelRouteConfig {
	return &ParallelRouteConfig{
		Params:         append(Params(nil), c.Params...),
		Query:          c.Query.clone(),
		OmitFromRoutes: c.OmitFromRoutes,
	}
}

// Merge returns a new config combining c and other. Parameters are
// overwritten by key (other wins), query keys are unioned and the route is
// omitted only when both sides omit it. Contexts present on both sides are
// merged with the same rules.
func (c *RouteConfig) Merge(other *RouteConfig) *RouteConfig {
	if c == nil {
		return other.Clone()
	}
	if other == nil {
		return c.Clone()
	}

	merged := &RouteConfig{
		Params:         c.Params.Merge(other.Params),
		Query:          c.Query.Union(other.Query),
		OmitFromRoutes: c.OmitFromRoutes && other.OmitFromRoutes,
	}

	if len(c.ParallelRoutes) > 0 || len(other.ParallelRoutes) > 0 {
		merged.ParallelRoutes = make(map[string]*ParallelRouteConfig, len(c.ParallelRoutes)+len(other.ParallelRoutes))
		for name, branch := range c.ParallelRoutes {
			merged.ParallelRoutes[name] = branch.clone()
		}
		for name, branch := range other.ParallelRoutes {
			merged.ParallelRoutes[name] = merged.ParallelRoutes[name].Merge(branch)
		}
	}

	return merged
}

// Clone returns a deep copy of c.
func (c *RouteConfig) Clone() *RouteConfig {
	if c == nil {
		return nil
	}
	out := &RouteConfig{
		Params:         append(Params(nil), c.Params...),
		Query:          c.Query.clone(),
		OmitFromRoutes: c.OmitFromRoutes,
	}
	if len(c.ParallelRoutes) > 0 {
		out.ParallelRoutes = make(map[string]*ParallelRouteConfig, len(c.ParallelRoutes))
		for name, branch := range c.ParallelRoutes {
			out.ParallelRoutes[name] = branch.clone()
		}
	}
	return out
}

// VisibleContexts returns the names of the contexts that are not omitted.
func (c *RouteConfig) VisibleContexts() []string {
	var names []string
	for name, branch := range c.ParallelRoutes {
		if !branch.OmitFromRoutes {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
