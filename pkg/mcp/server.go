// Package mcp exposes the route table and the path builder as MCP tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/saferoutes/pkg/emitter"
	"github.com/gnana997/saferoutes/pkg/mcplog"
	"github.com/gnana997/saferoutes/pkg/pathbuilder"
	"github.com/gnana997/saferoutes/pkg/routes"
)

const serverVersion = "0.1.0-dev"

// RouteSource supplies the current route table. *generator.Generator
// satisfies it; every tool call collects afresh.
type RouteSource interface {
	Collect() (routes.Mapping, error)
}

// Server implements the MCP server for saferoutes.
type Server struct {
	mcpServer *server.MCPServer
	source    RouteSource
	emitter   *emitter.Emitter
	builder   []pathbuilder.Option
	logger    *mcplog.Logger // nil disables call logging
}

// NewServer creates a server reading routes from src. builderOpts configure
// the builder used by build_url (typically pathbuilder.WithI18N); the route
// table is attached per call.
func NewServer(src RouteSource, logger *mcplog.Logger, builderOpts ...pathbuilder.Option) *Server {
	s := &Server{
		source:  src,
		emitter: emitter.New(emitter.Options{}),
		builder: builderOpts,
		logger:  logger,
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("saferoutes", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listRoutesTool(), Handler: s.handleListRoutes},
		server.ServerTool{Tool: getRouteTool(), Handler: s.handleGetRoute},
		server.ServerTool{Tool: buildURLTool(), Handler: s.handleBuildURL},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
