package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/saferoutes/pkg/mcplog"
	"github.com/gnana997/saferoutes/pkg/pathbuilder"
	"github.com/gnana997/saferoutes/pkg/routes"
)

// --- helpers ---

type staticSource struct {
	mapping routes.Mapping
	err     error
	calls   int
}

func (s *staticSource) Collect() (routes.Mapping, error) {
	s.calls++
	return s.mapping, s.err
}

func testMapping() routes.Mapping {
	return routes.Mapping{
		"/": {},
		"/users/[userId]": {
			Params: routes.Params{{Name: "userId", Kind: routes.SegmentDynamic}},
		},
		"/search": {
			Query: &routes.QueryConfig{Required: []string{"q"}, Optional: []string{"page"}},
		},
		"/docs/[[...slug]]": {
			Params: routes.Params{{Name: "slug", Kind: routes.SegmentOptionalCatchAll}},
		},
		"/internal": {OmitFromRoutes: true},
		"/feed": {
			ParallelRoutes: map[string]*routes.ParallelRouteConfig{
				"modal": {Query: &routes.QueryConfig{Required: []string{"id"}}},
				"list":  {},
			},
		},
	}
}

func testServer() (*Server, *staticSource) {
	src := &staticSource{mapping: testMapping()}
	return NewServer(src, nil), src
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

	switch req.Params.Name {
	case "list_routes":
		handler = s.handleListRoutes
	case "get_route":
		handler = s.handleGetRoute
	case "build_url":
		handler = s.handleBuildURL
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

func buildURL(t *testing.T, s *Server, args map[string]any) (string, *mcp.CallToolResult) {
	t.Helper()
	result := callTool(t, s, makeRequest("build_url", args))
	if result.IsError {
		return "", result
	}
	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &out))
	return out["url"], result
}

// --- list_routes ---

func TestHandleListRoutes(t *testing.T) {
	s, _ := testServer()
	result := callTool(t, s, makeRequest("list_routes", nil))
	assert.False(t, result.IsError)

	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &list))
	require.Len(t, list, 5)

	paths := make([]string, len(list))
	for i, r := range list {
		paths[i] = r["path"].(string)
	}
	assert.Equal(t, []string{"/", "/docs/[[...slug]]", "/feed", "/search", "/users/[userId]"}, paths)
	assert.Equal(t, []any{"list", "modal"}, list[2]["contexts"])
}

func TestHandleListRoutes_Prefix(t *testing.T) {
	s, _ := testServer()
	result := callTool(t, s, makeRequest("list_routes", map[string]any{"prefix": "/users"}))

	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "/users/[userId]", list[0]["path"])

	params := list[0]["params"].([]any)
	require.Len(t, params, 1)
	assert.Equal(t, "userId", params[0].(map[string]any)["name"])
}

func TestHandleListRoutes_IncludeOmitted(t *testing.T) {
	s, _ := testServer()
	result := callTool(t, s, makeRequest("list_routes", map[string]any{"include_omitted": true}))

	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &list))
	assert.Len(t, list, 6)
}

func TestHandleListRoutes_Empty(t *testing.T) {
	s := NewServer(&staticSource{mapping: routes.Mapping{}}, nil)
	result := callTool(t, s, makeRequest("list_routes", nil))
	assert.False(t, result.IsError)
	assert.Equal(t, "[]", resultJSON(t, result))
}

func TestHandleListRoutes_CollectError(t *testing.T) {
	s := NewServer(&staticSource{err: errors.New("page directory does not exist")}, nil)
	result := callTool(t, s, makeRequest("list_routes", nil))
	assert.True(t, result.IsError)
}

// --- get_route ---

func TestHandleGetRoute(t *testing.T) {
	s, _ := testServer()
	result := callTool(t, s, makeRequest("get_route", map[string]any{"path": "/search"}))
	assert.False(t, result.IsError)

	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &detail))
	assert.Equal(t, "/search", detail["path"])
	assert.Equal(t, "'/search': { query: Record<string, string> & { q: string; page?: string } }", detail["type"])
}

func TestHandleGetRoute_Normalizes(t *testing.T) {
	s, _ := testServer()
	result := callTool(t, s, makeRequest("get_route", map[string]any{"path": "users/[userId]/"}))
	assert.False(t, result.IsError)

	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &detail))
	assert.Equal(t, "/users/[userId]", detail["path"])
}

func TestHandleGetRoute_Omitted(t *testing.T) {
	s, _ := testServer()
	result := callTool(t, s, makeRequest("get_route", map[string]any{"path": "/internal"}))
	assert.False(t, result.IsError)

	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &detail))
	assert.Equal(t, true, detail["omitted"])
	assert.NotContains(t, detail, "type")
}

func TestHandleGetRoute_Parallel(t *testing.T) {
	s, _ := testServer()
	result := callTool(t, s, makeRequest("get_route", map[string]any{"path": "/feed"}))

	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &detail))
	assert.Contains(t, detail["parallelRoutes"], "modal")
	assert.Contains(t, detail["type"], "context: 'list' | 'modal'")
}

func TestHandleGetRoute_NotFound(t *testing.T) {
	s, _ := testServer()
	result := callTool(t, s, makeRequest("get_route", map[string]any{"path": "/nope"}))
	assert.True(t, result.IsError)
}

func TestHandleGetRoute_MissingPath(t *testing.T) {
	s, src := testServer()
	result := callTool(t, s, makeRequest("get_route", nil))
	assert.True(t, result.IsError)
	assert.Zero(t, src.calls)
}

// --- build_url ---

func TestHandleBuildURL(t *testing.T) {
	s, _ := testServer()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"static", map[string]any{"pattern": "/"}, "/"},
		{"dynamic", map[string]any{"pattern": "/users/[userId]", "params": map[string]any{"userId": "a b"}}, "/users/a%20b"},
		{"optional catch-all absent", map[string]any{"pattern": "/docs/[[...slug]]"}, "/docs"},
		{"optional catch-all list", map[string]any{"pattern": "/docs/[[...slug]]", "params": map[string]any{"slug": []any{"a", "b"}}}, "/docs/a/b"},
		{"query", map[string]any{"pattern": "/search", "query": "q=shoes&page=2"}, "/search?q=shoes&page=2"},
		{"context", map[string]any{"pattern": "/feed", "context": "modal", "query": "id=7"}, "/feed?id=7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, result := buildURL(t, s, tt.args)
			require.False(t, result.IsError, resultJSON(t, result))
			assert.Equal(t, tt.want, url)
		})
	}
}

func TestHandleBuildURL_Errors(t *testing.T) {
	s, _ := testServer()

	tests := []struct {
		name string
		args map[string]any
		msg  string
	}{
		{"missing pattern", nil, "pattern"},
		{"missing param", map[string]any{"pattern": "/users/[userId]"}, "userId"},
		{"unknown route", map[string]any{"pattern": "/nope"}, "/nope"},
		{"omitted route", map[string]any{"pattern": "/internal"}, "/internal"},
		{"missing query key", map[string]any{"pattern": "/search"}, "q"},
		{"missing context", map[string]any{"pattern": "/feed"}, "context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, result := buildURL(t, s, tt.args)
			require.True(t, result.IsError)
			assert.Contains(t, resultJSON(t, result), tt.msg)
		})
	}
}

func TestHandleBuildURL_NotStrict(t *testing.T) {
	s, src := testServer()
	url, result := buildURL(t, s, map[string]any{
		"pattern": "/anything/[id]",
		"params":  map[string]any{"id": "x"},
		"strict":  false,
	})
	require.False(t, result.IsError)
	assert.Equal(t, "/anything/x", url)
	assert.Zero(t, src.calls, "non-strict builds do not collect")
}

func TestHandleBuildURL_Locale(t *testing.T) {
	src := &staticSource{mapping: testMapping()}
	s := NewServer(src, nil, pathbuilder.WithI18N([]string{"en", "es"}, "en"))

	url, result := buildURL(t, s, map[string]any{"pattern": "/"})
	require.False(t, result.IsError)
	assert.Equal(t, "/en", url)

	url, result = buildURL(t, s, map[string]any{"pattern": "/users/[userId]", "params": map[string]any{"userId": "1"}, "locale": "es"})
	require.False(t, result.IsError)
	assert.Equal(t, "/es/users/1", url)

	_, result = buildURL(t, s, map[string]any{"pattern": "/", "locale": "fr"})
	assert.True(t, result.IsError)
}

// --- logging ---

func TestLoggingMiddleware(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	logger, err := mcplog.NewLogger(path)
	require.NoError(t, err)
	defer logger.Close()

	s := NewServer(&staticSource{mapping: testMapping()}, logger)
	handler := s.loggingMiddleware()(s.handleGetRoute)

	result, err := handler(context.Background(), makeRequest("get_route", map[string]any{"path": "/nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	require.NoError(t, logger.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	data := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, data, 1)

	var entry mcplog.LogEntry
	require.NoError(t, json.Unmarshal([]byte(data[0]), &entry))
	assert.Equal(t, "get_route", entry.Tool)
	assert.Equal(t, "/nope", entry.Route)
	assert.True(t, entry.ToolError)
	assert.Nil(t, entry.Error)
	assert.Greater(t, entry.ResponseBytes, 0)
}
