package mcp

import "github.com/mark3labs/mcp-go/mcp"

func listRoutesTool() mcp.Tool {
	return mcp.NewTool("list_routes",
		mcp.WithDescription("Lists the app routes with their params, query keys and parallel contexts"),
		mcp.WithString("prefix",
			mcp.Description("Only return routes whose path starts with this prefix")),
		mcp.WithBoolean("include_omitted",
			mcp.Description("Also return routes hidden by omitFromRoutes")),
	)
}

func getRouteTool() mcp.Tool {
	return mcp.NewTool("get_route",
		mcp.WithDescription("Returns one route, including its generated TypeScript entry"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Route path, e.g. /users/[userId]")),
	)
}

func buildURLTool() mcp.Tool {
	return mcp.NewTool("build_url",
		mcp.WithDescription("Builds a URL from a route pattern, checked against the current route table"),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("Route pattern, e.g. /users/[userId]")),
		mcp.WithObject("params",
			mcp.Description("Path parameters: a string for [name], an array of strings for [...name] and [[...name]]")),
		mcp.WithString("query",
			mcp.Description("Raw query string, e.g. q=shoes&page=2")),
		mcp.WithString("context",
			mcp.Description("Parallel route context")),
		mcp.WithString("locale",
			mcp.Description("Locale prefix override")),
		mcp.WithBoolean("strict",
			mcp.Description("Reject patterns missing from the route table (default true)")),
	)
}
