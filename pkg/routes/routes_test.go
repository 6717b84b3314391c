package routes

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySegment(t *testing.T) {
	tests := []struct {
		segment string
		kind    SegmentKind
		name    string
	}{
		{"about", SegmentStatic, ""},
		{"[id]", SegmentDynamic, "id"},
		{"[...slug]", SegmentCatchAll, "slug"},
		{"[[...provider]]", SegmentOptionalCatchAll, "provider"},
		{"[]", SegmentStatic, ""},
		{"(marketing)", SegmentStatic, ""},
	}

	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			kind, name := ClassifySegment(tt.segment)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestSegmentKind_ParamType(t *testing.T) {
	assert.Equal(t, "string", SegmentDynamic.ParamType())
	assert.Equal(t, "string[]", SegmentCatchAll.ParamType())
	assert.Equal(t, "string[] | undefined", SegmentOptionalCatchAll.ParamType())
	assert.Empty(t, SegmentStatic.ParamType())
}

func TestSegmentKind_TextRoundTrip(t *testing.T) {
	for _, kind := range []SegmentKind{SegmentStatic, SegmentDynamic, SegmentCatchAll, SegmentOptionalCatchAll} {
		text, err := kind.MarshalText()
		require.NoError(t, err)

		var got SegmentKind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, kind, got)
	}

	var bad SegmentKind
	assert.Error(t, bad.UnmarshalText([]byte("wildcard")))
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/", NormalizePath(""))
	assert.Equal(t, "/", NormalizePath("/"))
	assert.Equal(t, "/users/[userId]", NormalizePath(`users\[userId]`))
	assert.Equal(t, "/docs/[...slug]", NormalizePath("/docs//[...slug]/"))
	assert.Equal(t, "/auth/[[...provider]]", NormalizePath("auth/[[...provider]]"))
}

func TestParamsFromPath(t *testing.T) {
	params := ParamsFromPath("/shop/[category]/[...slug]/[[...rest]]")
	require.Len(t, params, 3)
	assert.Equal(t, Param{Name: "category", Kind: SegmentDynamic}, params[0])
	assert.Equal(t, Param{Name: "slug", Kind: SegmentCatchAll}, params[1])
	assert.Equal(t, Param{Name: "rest", Kind: SegmentOptionalCatchAll}, params[2])

	assert.Empty(t, ParamsFromPath("/"))
	assert.Empty(t, ParamsFromPath("/about/team"))
}

func TestParams_AllOptional(t *testing.T) {
	assert.False(t, Params{}.AllOptional())
	assert.True(t, Params{{Name: "p", Kind: SegmentOptionalCatchAll}}.AllOptional())
	assert.False(t, Params{
		{Name: "id", Kind: SegmentDynamic},
		{Name: "p", Kind: SegmentOptionalCatchAll},
	}.AllOptional())
}

func TestParams_MergeOverwritesByKey(t *testing.T) {
	a := Params{{Name: "id", Kind: SegmentDynamic}, {Name: "slug", Kind: SegmentDynamic}}
	b := Params{{Name: "slug", Kind: SegmentCatchAll}, {Name: "page", Kind: SegmentDynamic}}

	merged := a.Merge(b)
	require.Len(t, merged, 3)
	assert.Equal(t, "id", merged[0].Name)
	assert.Equal(t, SegmentCatchAll, merged[1].Kind)
	assert.Equal(t, "page", merged[2].Name)

	// inputs untouched
	assert.Equal(t, SegmentDynamic, a[1].Kind)
}

func TestQueryConfig_Union(t *testing.T) {
	a := &QueryConfig{Required: []string{"q", "page"}}
	b := &QueryConfig{Required: []string{"page", "sort"}, Optional: []string{"filter"}}

	u := a.Union(b)
	assert.Equal(t, []string{"q", "page", "sort"}, u.Required)
	assert.Equal(t, []string{"filter"}, u.Optional)

	var none *QueryConfig
	assert.Nil(t, none.Union(nil))
	assert.True(t, none.Empty())
	assert.True(t, (&QueryConfig{}).Empty())
}

func TestRouteConfig_MergeOmitIsLogicalAnd(t *testing.T) {
	omitted := &RouteConfig{OmitFromRoutes: true}
	visible := &RouteConfig{}

	assert.False(t, omitted.Merge(visible).OmitFromRoutes)
	assert.False(t, visible.Merge(omitted).OmitFromRoutes)
	assert.True(t, omitted.Merge(&RouteConfig{OmitFromRoutes: true}).OmitFromRoutes)
}

func TestRouteConfig_MergeContexts(t *testing.T) {
	a := &RouteConfig{ParallelRoutes: map[string]*ParallelRouteConfig{
		"auth": {Query: &QueryConfig{Required: []string{"q"}}},
	}}
	b := &RouteConfig{ParallelRoutes: map[string]*ParallelRouteConfig{
		"auth":      {Query: &QueryConfig{Optional: []string{"next"}}},
		"dashboard": {OmitFromRoutes: true},
	}}

	merged := a.Merge(b)
	require.Len(t, merged.ParallelRoutes, 2)
	assert.Equal(t, []string{"q"}, merged.ParallelRoutes["auth"].Query.Required)
	assert.Equal(t, []string{"next"}, merged.ParallelRoutes["auth"].Query.Optional)
	assert.True(t, merged.ParallelRoutes["dashboard"].OmitFromRoutes)
	assert.Equal(t, []string{"auth"}, merged.VisibleContexts())

	// a is not mutated
	assert.Nil(t, a.ParallelRoutes["auth"].Query.Optional)
}

func TestMapping_MergeParallel(t *testing.T) {
	root := Mapping{}

	auth := Mapping{"/": &RouteConfig{
		Query:          &QueryConfig{Required: []string{"q"}},
		ParallelRoutes: map[string]*ParallelRouteConfig{"auth": {Query: &QueryConfig{Required: []string{"q"}}}},
	}}
	dashboard := Mapping{"/": &RouteConfig{
		Query: &QueryConfig{Required: []string{"r"}},
	}}

	root.MergeParallel(auth, "auth")
	root.MergeParallel(dashboard, "dashboard")

	cfg := root["/"]
	require.NotNil(t, cfg)
	assert.Nil(t, cfg.Query, "slot query keys stay on their branch")
	assert.Equal(t, []string{"auth", "dashboard"}, cfg.VisibleContexts())
	assert.Equal(t, []string{"q"}, cfg.ParallelRoutes["auth"].Query.Required)
	assert.Equal(t, []string{"r"}, cfg.ParallelRoutes["dashboard"].Query.Required)
	assert.False(t, cfg.OmitFromRoutes)
}

func TestMapping_MergeParallelAllOmitted(t *testing.T) {
	root := Mapping{}
	root.MergeParallel(Mapping{"/x": {OmitFromRoutes: true}}, "a")
	root.MergeParallel(Mapping{"/x": {OmitFromRoutes: true}}, "b")

	assert.True(t, root["/x"].OmitFromRoutes)
	assert.Empty(t, root.Visible())

	root.MergeParallel(Mapping{"/x": {}}, "c")
	assert.False(t, root["/x"].OmitFromRoutes)
	assert.Equal(t, []string{"c"}, root["/x"].VisibleContexts())
}

func TestMapping_SortedAndVisible(t *testing.T) {
	m := Mapping{
		"/b":      {},
		"/a":      {},
		"/hidden": {OmitFromRoutes: true},
		"/":       {},
	}
	assert.Equal(t, []string{"/", "/a", "/b", "/hidden"}, m.SortedPaths())
	assert.Equal(t, []string{"/", "/a", "/b"}, m.Visible())
}

func TestManifest_WriteAndLoad(t *testing.T) {
	m := Mapping{
		"/users/[userId]": {
			Params: Params{{Name: "userId", Kind: SegmentDynamic}},
			Query:  &QueryConfig{Required: []string{"tab"}},
		},
	}
	path := filepath.Join(t.TempDir(), "nested", "routes.json")
	now := time.Date(2024, 10, 11, 23, 20, 16, 0, time.UTC)

	require.NoError(t, WriteManifest(path, NewManifest(m, "build-1", now)))

	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "build-1", loaded.BuildID)
	assert.Equal(t, "2024-10-11T23:20:16Z", loaded.GeneratedAt)

	cfg, ok := loaded.Routes.Lookup("/users/[userId]")
	require.True(t, ok)
	assert.Equal(t, SegmentDynamic, cfg.Params[0].Kind)
	assert.Equal(t, []string{"tab"}, cfg.Query.Required)
}

func TestLoadManifest_Errors(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
