package emitter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/saferoutes/pkg/routes"
)

var fixedNow = func() time.Time {
	return time.Date(2024, 10, 6, 5, 45, 37, 734_000_000, time.UTC)
}

func newEmitter(locales ...string) *Emitter {
	return New(Options{Now: fixedNow, Locales: locales})
}

func dynamic(name string) routes.Param {
	return routes.Param{Name: name, Kind: routes.SegmentDynamic}
}

func TestEmit_Layout(t *testing.T) {
	out := newEmitter().Emit(routes.Mapping{
		"/about": {},
		"/":      {},
	})

	assert.True(t, strings.HasPrefix(out,
		"// This file is auto-generated. Do not edit manually.\n// Modified at 2024-10-06T05:45:37.734Z\n\n/**\n"))
	assert.Contains(t, out, "export type Routes = {\n"+
		"  '/': { query?: Record<string, string>; };\n"+
		"  '/about': { query?: Record<string, string>; };\n"+
		"};\n\nexport type Path = keyof Routes;\n")
}

func TestEmit_Empty(t *testing.T) {
	out := newEmitter().Emit(routes.Mapping{})
	assert.Contains(t, out, "export type Routes = {\n};\n")
}

func TestEmit_Params(t *testing.T) {
	tests := []struct {
		name string
		path string
		cfg  *routes.RouteConfig
		want string
	}{
		{
			name: "dynamic",
			path: "/users/[userId]",
			cfg:  &routes.RouteConfig{Params: routes.ParamsFromPath("/users/[userId]")},
			want: "'/users/[userId]': { params: { userId: string }; query?: Record<string, string>; }",
		},
		{
			name: "catch-all",
			path: "/docs/[...slug]",
			cfg:  &routes.RouteConfig{Params: routes.ParamsFromPath("/docs/[...slug]")},
			want: "'/docs/[...slug]': { params: { slug: string[] }; query?: Record<string, string>; }",
		},
		{
			name: "optional catch-all only",
			path: "/auth/sign-in/[[...provider]]",
			cfg:  &routes.RouteConfig{Params: routes.ParamsFromPath("/auth/sign-in/[[...provider]]")},
			want: "'/auth/sign-in/[[...provider]]': { params?: { provider?: string[] }; query?: Record<string, string>;",
		},
		{
			name: "mixed",
			path: "/posts/[postId]/[[...optional]]",
			cfg:  &routes.RouteConfig{Params: routes.ParamsFromPath("/posts/[postId]/[[...optional]]")},
			want: "'/posts/[postId]/[[...optional]]': { params: { postId: string; optional?: string[] }; query?: Record<string, string>;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := newEmitter().Emit(routes.Mapping{tt.path: tt.cfg})
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestEmit_Query(t *testing.T) {
	out := newEmitter().Emit(routes.Mapping{
		"/":      {Query: &routes.QueryConfig{Required: []string{"q"}}},
		"/about": {Query: &routes.QueryConfig{Optional: []string{"filter"}}},
		"/products": {Query: &routes.QueryConfig{
			Required: []string{"category"},
			Optional: []string{"sort"},
		}},
		"/products/[id]": {Params: routes.Params{dynamic("id")}, OmitFromRoutes: true},
		"/empty":         {Query: &routes.QueryConfig{}},
	})

	assert.Contains(t, out, "'/': { query: Record<string, string> & { q: string } }")
	assert.Contains(t, out, "'/about': { query?: Record<string, string> & { filter?: string } }")
	assert.Contains(t, out, "'/products': { query: Record<string, string> & { category: string; sort?: string } }")
	assert.Contains(t, out, "'/empty': { query?: Record<string, string>; }")
	assert.NotContains(t, out, "'/products/[id]'")
}

func TestEmit_NonIdentifierKeys(t *testing.T) {
	out := newEmitter().Emit(routes.Mapping{
		"/posts/[post-id]": {
			Params: routes.Params{dynamic("post-id")},
			Query:  &routes.QueryConfig{Required: []string{"sort-by"}, Optional: []string{"$page", "2nd"}},
		},
	})

	assert.Contains(t, out, "'/posts/[post-id]': { params: { 'post-id': string }; query: Record<string, string> & { 'sort-by': string; $page?: string; '2nd'?: string } }")
}

func TestKey(t *testing.T) {
	tests := map[string]string{
		"userId":  "userId",
		"_id":     "_id",
		"$page":   "$page",
		"post-id": "'post-id'",
		"2nd":     "'2nd'",
		"a.b":     "'a.b'",
		"it's":    `'it\'s'`,
	}
	for name, want := range tests {
		assert.Equal(t, want, key(name), name)
	}
}

func TestEmit_ParallelRoutes(t *testing.T) {
	mapping := routes.Mapping{
		"/": {
			ParallelRoutes: map[string]*routes.ParallelRouteConfig{
				"dashboard": {},
				"auth":      {Query: &routes.QueryConfig{Required: []string{"q"}}},
			},
		},
		"/groups/[groupId]": {
			Params: routes.Params{dynamic("groupId")},
			ParallelRoutes: map[string]*routes.ParallelRouteConfig{
				"dashboard": {
					Params: routes.Params{dynamic("groupId")},
					Query:  &routes.QueryConfig{Required: []string{"foo"}, Optional: []string{"bar"}},
				},
			},
		},
	}

	out := newEmitter().Emit(mapping)

	assert.Contains(t, out, "'/': { context: 'auth' | 'dashboard'; } & (\n"+
		"  | { context: 'auth'; query: Record<string, string> & { q: string } }\n"+
		"    | { context: 'dashboard'; query?: Record<string, string>; }\n"+
		")")
	assert.Contains(t, out, "'/groups/[groupId]': { params: { groupId: string }; context: 'dashboard'; } & (\n"+
		"  | { context: 'dashboard'; query: Record<string, string> & { foo: string; bar?: string } }\n"+
		")")
}

func TestEmit_ParallelOmit(t *testing.T) {
	mapping := routes.Mapping{
		// Both contexts omitted: the route is gone.
		"/hidden": {
			OmitFromRoutes: true,
			ParallelRoutes: map[string]*routes.ParallelRouteConfig{
				"a": {OmitFromRoutes: true, Query: &routes.QueryConfig{Required: []string{"q"}}},
				"b": {OmitFromRoutes: true, Query: &routes.QueryConfig{Required: []string{"r"}}},
			},
		},
		// One context omitted: only the survivor is rendered.
		"/half": {
			ParallelRoutes: map[string]*routes.ParallelRouteConfig{
				"a": {OmitFromRoutes: true, Query: &routes.QueryConfig{Required: []string{"q"}}},
				"b": {Query: &routes.QueryConfig{Required: []string{"r"}}},
			},
		},
		// Every context omitted but a bare page keeps the route.
		"/bare": {
			Query: &routes.QueryConfig{Optional: []string{"x"}},
			ParallelRoutes: map[string]*routes.ParallelRouteConfig{
				"a": {OmitFromRoutes: true},
			},
		},
	}

	out := newEmitter().Emit(mapping)

	assert.NotContains(t, out, "'/hidden'")
	assert.Contains(t, out, "'/half': { context: 'b'; } & (\n"+
		"  | { context: 'b'; query: Record<string, string> & { r: string } }\n)")
	assert.NotContains(t, out, "context: 'a'")
	assert.Contains(t, out, "'/bare': { query?: Record<string, string> & { x?: string } }")
}

func TestEmit_Locales(t *testing.T) {
	e := newEmitter("en", "es")
	out := e.Emit(routes.Mapping{
		"/":       {},
		"/search": {Query: &routes.QueryConfig{Required: []string{"q"}}},
		"/feed": {ParallelRoutes: map[string]*routes.ParallelRouteConfig{
			"x": {},
		}},
	})

	assert.Contains(t, out, "'/': { query?: Record<string, string>; locale?: 'en' | 'es' }")
	assert.Contains(t, out, "'/search': { query: Record<string, string> & { q: string }; locale?: 'en' | 'es' }")
	assert.Contains(t, out, "'/feed': { context: 'x'; locale?: 'en' | 'es'; } & (")
}

func TestEmit_Deterministic(t *testing.T) {
	build := func() routes.Mapping {
		return routes.Mapping{
			"/b": {Query: &routes.QueryConfig{Required: []string{"z", "a"}}},
			"/a": {ParallelRoutes: map[string]*routes.ParallelRouteConfig{
				"y": {}, "x": {}, "z": {},
			}},
			"/c/[id]": {Params: routes.Params{dynamic("id")}},
		}
	}

	e := newEmitter()
	first := e.Emit(build())
	for i := 0; i < 10; i++ {
		require.Equal(t, first, e.Emit(build()))
	}
	assert.Less(t, strings.Index(first, "'/a'"), strings.Index(first, "'/b'"))
	assert.Less(t, strings.Index(first, "'/b'"), strings.Index(first, "'/c/[id]'"))
	assert.Contains(t, first, "context: 'x' | 'y' | 'z';")
}

func TestEmit_TimestampOnlyDifference(t *testing.T) {
	mapping := routes.Mapping{"/": {}}
	a := New(Options{Now: fixedNow}).Emit(mapping)
	b := New(Options{Now: func() time.Time { return fixedNow().Add(time.Hour) }}).Emit(mapping)

	stripStamp := func(s string) string {
		lines := strings.Split(s, "\n")
		return strings.Join(append(lines[:1:1], lines[2:]...), "\n")
	}
	assert.NotEqual(t, a, b)
	assert.Equal(t, stripStamp(a), stripStamp(b))
}

func TestRoutes(t *testing.T) {
	lines := newEmitter().Routes(routes.Mapping{
		"/":       {},
		"/secret": {OmitFromRoutes: true},
	})
	assert.Equal(t, []string{"'/': { query?: Record<string, string>; }"}, lines)
}

func TestQuoteEscapes(t *testing.T) {
	assert.Equal(t, `'it\'s'`, quote("it's"))
}
