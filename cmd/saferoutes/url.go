package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/saferoutes/pkg/pathbuilder"
	"github.com/gnana997/saferoutes/pkg/routes"
)

type urlOptions struct {
	params  []string
	query   []string
	locale  string
	context string
	strict  bool
}

func (a *app) urlCmd() *cobra.Command {
	var opts urlOptions

	cmd := &cobra.Command{
		Use:   "url <pattern>",
		Short: "Build a URL from a route pattern",
		Long: `Build a URL from a route pattern and print it.

Examples:
  saferoutes url /users/[userId] --param userId=42
  saferoutes url /docs/[...slug] --param slug=a --param slug=b
  saferoutes url /search --query q=shoes --strict
  saferoutes url / --i18n --locales en,es --locale es`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runURL(args[0], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.params, "param", nil, "Path parameter as key=value; repeat a key for catch-all segments")
	cmd.Flags().StringArrayVar(&opts.query, "query", nil, "Query parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "Locale prefix (with --i18n)")
	cmd.Flags().StringVar(&opts.context, "context", "", "Parallel route context")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Validate against the collected route table")

	return cmd
}

func (a *app) runURL(pattern string, opts urlOptions) error {
	params, err := parseParams(pattern, opts.params)
	if err != nil {
		return err
	}

	cfg := &pathbuilder.Config{
		Params:  params,
		Locale:  opts.locale,
		Context: opts.context,
	}
	if len(opts.query) > 0 {
		cfg.Query = pathbuilder.NewQuery()
		for _, kv := range opts.query {
			key, value, err := splitPair(kv)
			if err != nil {
				return fmt.Errorf("--query: %w", err)
			}
			cfg.Query.Add(key, value)
		}
	}

	builderOpts := a.builderOptions()
	if opts.strict {
		g, err := a.newGenerator()
		if err != nil {
			return err
		}
		defer g.Close()
		mapping, err := g.Collect()
		if err != nil {
			return err
		}
		builderOpts = append(builderOpts, pathbuilder.WithRoutes(mapping))
	}

	url, err := pathbuilder.New(builderOpts...).Build(pattern, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, url)
	return nil
}

// parseParams turns key=value pairs into builder params. Keys bound by a
// catch-all segment of pattern, or given more than once, become lists.
func parseParams(pattern string, pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	lists := make(map[string]bool)
	for _, p := range routes.ParamsFromPath(routes.NormalizePath(pattern)) {
		if p.Kind == routes.SegmentCatchAll || p.Kind == routes.SegmentOptionalCatchAll {
			lists[p.Name] = true
		}
	}

	values := make(map[string][]string)
	var order []string
	for _, kv := range pairs {
		key, value, err := splitPair(kv)
		if err != nil {
			return nil, fmt.Errorf("--param: %w", err)
		}
		if _, seen := values[key]; !seen {
			order = append(order, key)
		}
		values[key] = append(values[key], value)
	}

	params := make(map[string]any, len(values))
	for _, key := range order {
		v := values[key]
		if lists[key] || len(v) > 1 {
			params[key] = v
		} else {
			params[key] = v[0]
		}
	}
	return params, nil
}

func splitPair(kv string) (string, string, error) {
	key, value, ok := strings.Cut(kv, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("expected key=value, got %q", kv)
	}
	return key, value, nil
}
