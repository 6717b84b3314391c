package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnana997/saferoutes/pkg/generator"
	"github.com/gnana997/saferoutes/pkg/pathbuilder"
	"github.com/gnana997/saferoutes/pkg/util"
)

// Version information set at build time.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

// nowFunc stamps manifests printed by the routes command.
var nowFunc = time.Now

// app is the state shared by the commands of one invocation.
type app struct {
	flags  flagValues
	cfg    *ProjectConfig
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "saferoutes: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "saferoutes",
		Short: "Type-safe routes for Next.js app directories",
		Long: `saferoutes scans the app directory of a Next.js project and writes a
TypeScript declaration of every route, its params and its query keys.

Without a subcommand it runs generate.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	a.flags.register(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		a.generateCmd(),
		a.watchCmd(),
		a.routesCmd(),
		a.urlCmd(),
		a.serveCmd(),
		versionCmd(stdout),
	)

	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd.Flags(), &a.flags)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := util.VerboseLoggerConfig(cfg.Verbose)
	logCfg.Output = a.stderr
	a.logger = util.NewLogger(logCfg)
	util.SetDefault(a.logger)
	return nil
}

// newGenerator creates a generator for the loaded config. A missing page
// directory is reported with the path the user should create.
func (a *app) newGenerator() (*generator.Generator, error) {
	g, err := generator.New(a.cfg.generatorConfig(), a.logger)
	if generator.IsPagesDirNotFound(err) {
		return nil, fmt.Errorf("%w (create it or pass --root)", err)
	}
	return g, err
}

// builderOptions returns the path builder options implied by the config.
func (a *app) builderOptions() []pathbuilder.Option {
	if !a.cfg.WithI18N {
		return nil
	}
	return []pathbuilder.Option{pathbuilder.WithI18N(a.cfg.Locales, a.cfg.DefaultLocale)}
}
