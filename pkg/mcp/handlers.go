package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/saferoutes/pkg/pathbuilder"
	"github.com/gnana997/saferoutes/pkg/routes"
)

type routeSummary struct {
	Path     string              `json:"path"`
	Params   routes.Params       `json:"params,omitempty"`
	Query    *routes.QueryConfig `json:"query,omitempty"`
	Contexts []string            `json:"contexts,omitempty"`
	Omitted  bool                `json:"omitted,omitempty"`
}

type routeDetail struct {
	routeSummary
	Type           string                                 `json:"type,omitempty"`
	ParallelRoutes map[string]*routes.ParallelRouteConfig `json:"parallelRoutes,omitempty"`
}

func summarize(path string, cfg *routes.RouteConfig) routeSummary {
	return routeSummary{
		Path:     path,
		Params:   cfg.Params,
		Query:    cfg.Query,
		Contexts: cfg.VisibleContexts(),
		Omitted:  cfg.OmitFromRoutes,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to encode result", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) collect() (routes.Mapping, *mcp.CallToolResult) {
	mapping, err := s.source.Collect()
	if err != nil {
		return nil, mcp.NewToolResultErrorFromErr("failed to collect routes", err)
	}
	return mapping, nil
}

func (s *Server) handleListRoutes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mapping, errResult := s.collect()
	if errResult != nil {
		return errResult, nil
	}

	prefix := req.GetString("prefix", "")
	includeOmitted := req.GetBool("include_omitted", false)

	out := []routeSummary{}
	for _, path := range mapping.SortedPaths() {
		cfg := mapping[path]
		if cfg.OmitFromRoutes && !includeOmitted {
			continue
		}
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		out = append(out, summarize(path, cfg))
	}
	return jsonResult(out)
}

func (s *Server) handleGetRoute(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mapping, errResult := s.collect()
	if errResult != nil {
		return errResult, nil
	}

	path = routes.NormalizePath(path)
	cfg, ok := mapping.Lookup(path)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("route not found: %s", path)), nil
	}

	detail := routeDetail{
		routeSummary:   summarize(path, cfg),
		ParallelRoutes: cfg.ParallelRoutes,
	}
	if lines := s.emitter.Routes(routes.Mapping{path: cfg}); len(lines) == 1 {
		detail.Type = lines[0]
	}
	return jsonResult(detail)
}

func (s *Server) handleBuildURL(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg := &pathbuilder.Config{
		Context: req.GetString("context", ""),
		Locale:  req.GetString("locale", ""),
	}
	if params, ok := req.GetArguments()["params"].(map[string]any); ok {
		cfg.Params = params
	}
	if raw := req.GetString("query", ""); raw != "" {
		q, err := pathbuilder.ParseQuery(raw)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("invalid query", err), nil
		}
		cfg.Query = q
	}

	opts := append([]pathbuilder.Option(nil), s.builder...)
	if req.GetBool("strict", true) {
		mapping, errResult := s.collect()
		if errResult != nil {
			return errResult, nil
		}
		opts = append(opts, pathbuilder.WithRoutes(mapping))
	}

	url, err := pathbuilder.New(opts...).Build(pattern, cfg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]string{"url": url})
}
