package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Write the route types (default command)",
		Long: `Scan the app directory and write the route type file.

Examples:
  saferoutes                                  # types/routes.ts
  saferoutes generate --out lib/routes.d.ts
  saferoutes generate --manifest routes.json  # also write the table as JSON
  saferoutes generate --exclude 'internal/**'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate()
		},
	}
}

func (a *app) runGenerate() error {
	g, err := a.newGenerator()
	if err != nil {
		return err
	}
	defer g.Close()

	res, err := g.Generate("")
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Generated %d routes in %s\n", res.VisibleRoutes, res.OutPath)
	if res.ManifestPath != "" {
		fmt.Fprintf(a.stdout, "Wrote manifest %s\n", res.ManifestPath)
	}
	return nil
}
