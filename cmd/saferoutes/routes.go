package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/saferoutes/pkg/emitter"
	"github.com/gnana997/saferoutes/pkg/routes"
)

func (a *app) routesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the collected route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRoutes(asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the table as a JSON manifest")

	return cmd
}

func (a *app) runRoutes(asJSON bool) error {
	g, err := a.newGenerator()
	if err != nil {
		return err
	}
	defer g.Close()

	mapping, err := g.Collect()
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(routes.NewManifest(mapping, "", nowFunc()), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, string(data))
		return nil
	}

	var locales []string
	if a.cfg.WithI18N {
		locales = a.cfg.Locales
	}
	for _, line := range emitter.New(emitter.Options{Locales: locales}).Routes(mapping) {
		fmt.Fprintln(a.stdout, line)
	}
	return nil
}
