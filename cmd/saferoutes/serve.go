package main

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/gnana997/saferoutes/pkg/mcp"
	"github.com/gnana997/saferoutes/pkg/mcplog"
)

func (a *app) serveCmd() *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdin/stdout",
		Long: `Start an MCP server exposing the route table to AI agents.

Tools:
  list_routes  Routes with their params, query keys and contexts
  get_route    One route, including its generated TypeScript entry
  build_url    Build a URL, validated against the current route table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("log") || a.cfg.MCPLog == "" {
				a.cfg.MCPLog = logPath
			}
			return a.runServe()
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "", "Append a JSONL line per tool call to this file")

	return cmd
}

func (a *app) runServe() error {
	g, err := a.newGenerator()
	if err != nil {
		return err
	}
	defer g.Close()

	callLog, err := mcplog.NewLogger(a.cfg.MCPLog)
	if err != nil {
		return err
	}
	if callLog != nil {
		defer callLog.Close()
	}

	srv := mcpserver.NewServer(g, callLog, a.builderOptions()...)
	return srv.ServeStdio()
}
