package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/gnana997/saferoutes/pkg/generator"
)

const (
	defaultConfigFile = ".saferoutes.yaml"
	envPrefix         = "SAFEROUTES_"
)

// ProjectConfig holds the contents of .saferoutes.yaml. Each field can also
// be set from a SAFEROUTES_* environment variable.
type ProjectConfig struct {
	RootDir         string   `yaml:"root" env:"ROOT"`
	OutPath         string   `yaml:"outPath" env:"OUT_PATH"`
	Verbose         bool     `yaml:"verbose" env:"VERBOSE"`
	UseSrcDirectory *bool    `yaml:"useSrcDirectory" env:"USE_SRC_DIRECTORY"`
	WithI18N        bool     `yaml:"i18n" env:"I18N"`
	Locales         []string `yaml:"locales" env:"LOCALES"`
	DefaultLocale   string   `yaml:"defaultLocale" env:"DEFAULT_LOCALE"`
	Exclude         []string `yaml:"exclude" env:"EXCLUDE"`
	Manifest        string   `yaml:"manifest" env:"MANIFEST"`
	MCPLog          string   `yaml:"mcpLog" env:"MCP_LOG"`
	ParserPoolSize  int      `yaml:"parserPoolSize" env:"PARSER_POOL_SIZE"`
}

// loadProjectConfig reads the yaml config at path. Returns nil (no error)
// if the file does not exist.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// loadConfig layers the configuration: defaults, the yaml file, .env and
// the environment, then explicitly set flags.
func loadConfig(flags *pflag.FlagSet, fv *flagValues) (*ProjectConfig, error) {
	cfg, err := loadProjectConfig(fv.configFile)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		if flags.Changed("config") {
			return nil, fmt.Errorf("config file %s does not exist", fv.configFile)
		}
		cfg = &ProjectConfig{}
	}

	// A missing .env is fine.
	_ = godotenv.Load()
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	fv.apply(flags, cfg)
	return cfg, nil
}

// flagValues holds the persistent flags shared by every command.
type flagValues struct {
	configFile    string
	rootDir       string
	outPath       string
	verbose       bool
	useSrc        bool
	i18n          bool
	locales       []string
	defaultLocale string
	exclude       []string
	manifest      string
}

func (fv *flagValues) register(flags *pflag.FlagSet) {
	flags.StringVar(&fv.configFile, "config", defaultConfigFile, "Project config file")
	flags.StringVar(&fv.rootDir, "root", "", "Project root (default: working directory)")
	flags.StringVar(&fv.outPath, "outPath", generator.DefaultOutPath, "Output file, relative to the source directory")
	flags.BoolVarP(&fv.verbose, "verbose", "v", false, "Verbose logging")
	flags.BoolVar(&fv.useSrc, "src", false, "Force the src/ directory convention on or off (default: detect)")
	flags.BoolVar(&fv.i18n, "i18n", false, "Add locale keys and prefixes")
	flags.StringSliceVar(&fv.locales, "locales", nil, "Allowed locales, comma separated")
	flags.StringVar(&fv.defaultLocale, "default-locale", "", "Locale used when a call sets none")
	flags.StringArrayVar(&fv.exclude, "exclude", nil, "Glob of page directory entries to skip (repeatable)")
	flags.StringVar(&fv.manifest, "manifest", "", "Also write the route table as JSON to this path")
}

// apply overwrites cfg with the flags the user set.
func (fv *flagValues) apply(flags *pflag.FlagSet, cfg *ProjectConfig) {
	if flags.Changed("root") {
		cfg.RootDir = fv.rootDir
	}
	if flags.Changed("outPath") || cfg.OutPath == "" {
		cfg.OutPath = fv.outPath
	}
	if flags.Changed("verbose") {
		cfg.Verbose = fv.verbose
	}
	if flags.Changed("src") {
		useSrc := fv.useSrc
		cfg.UseSrcDirectory = &useSrc
	}
	if flags.Changed("i18n") {
		cfg.WithI18N = fv.i18n
	}
	if flags.Changed("locales") {
		cfg.Locales = fv.locales
	}
	if flags.Changed("default-locale") {
		cfg.DefaultLocale = fv.defaultLocale
	}
	if flags.Changed("exclude") {
		cfg.Exclude = fv.exclude
	}
	if flags.Changed("manifest") {
		cfg.Manifest = fv.manifest
	}
}

// normalizeFlagName accepts the short spelling --out for --outPath.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "out" {
		name = "outPath"
	}
	return pflag.NormalizedName(name)
}

// generatorConfig converts cfg into the generator's configuration.
func (cfg *ProjectConfig) generatorConfig() generator.Config {
	return generator.Config{
		RootDir:         cfg.RootDir,
		OutPath:         cfg.OutPath,
		Verbose:         cfg.Verbose,
		UseSrcDirectory: cfg.UseSrcDirectory,
		WithI18N:        cfg.WithI18N,
		Locales:         cfg.Locales,
		DefaultLocale:   cfg.DefaultLocale,
		Exclude:         cfg.Exclude,
		ManifestPath:    cfg.Manifest,
		ParserPoolSize:  cfg.ParserPoolSize,
	}
}
