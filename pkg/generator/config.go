package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultOutPath is where the type file goes when none is configured,
// relative to the source directory.
const DefaultOutPath = "types/routes.ts"

const (
	srcDirName   = "src"
	pagesDirName = "app"
)

// srcMarkers are the directories whose presence under src/ signals the src
// directory convention.
var srcMarkers = []string{"pages", "app", "components"}

// Config controls one generator.
type Config struct {
	// RootDir is the project root. Defaults to the working directory.
	RootDir string

	// OutPath is the type file path, relative to the source directory.
	OutPath string

	Verbose bool

	// UseSrcDirectory forces the src/ convention on or off. Nil detects it.
	UseSrcDirectory *bool

	// WithI18N adds locale keys to the emitted types.
	WithI18N      bool
	Locales       []string
	DefaultLocale string

	// Exclude lists doublestar patterns, relative to the page directory,
	// of entries to skip.
	Exclude []string

	// ManifestPath, when set, also writes the route table as JSON. Relative
	// paths resolve against the source directory like OutPath.
	ManifestPath string

	// ParserPoolSize bounds the tree-sitter parsers kept per grammar. Zero
	// sizes the pool from the CPU count.
	ParserPoolSize int

	// Now stamps the emitted file and manifest. Defaults to time.Now.
	Now func() time.Time
}

// Paths are the resolved locations a generator works with.
type Paths struct {
	RootDir      string
	UseSrc       bool
	PagesDir     string
	OutPath      string
	ManifestPath string
}

// ErrPagesDirNotFound is returned when the page directory does not exist.
var ErrPagesDirNotFound = errors.New("page directory does not exist")

// Resolve computes the generator paths from cfg.
func (cfg Config) Resolve() (Paths, error) {
	root := cfg.RootDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Paths{}, fmt.Errorf("get working directory: %w", err)
		}
		root = wd
	}

	useSrc := DetectSrcDirectory(root)
	if cfg.UseSrcDirectory != nil {
		useSrc = *cfg.UseSrcDirectory
	}

	outPath := cfg.OutPath
	if outPath == "" {
		outPath = DefaultOutPath
	}

	p := Paths{
		RootDir:  root,
		UseSrc:   useSrc,
		PagesDir: PagesDir(root, useSrc),
		OutPath:  ResolveOutputPath(root, outPath, useSrc),
	}
	if cfg.ManifestPath != "" {
		p.ManifestPath = ResolveOutputPath(root, cfg.ManifestPath, useSrc)
	}
	return p, nil
}

// CheckPagesDir returns ErrPagesDirNotFound, wrapped with the path, when the
// page directory is missing.
func (p Paths) CheckPagesDir() error {
	info, err := os.Stat(p.PagesDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrPagesDirNotFound, p.PagesDir)
		}
		return fmt.Errorf("stat page directory %s: %w", p.PagesDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrPagesDirNotFound, p.PagesDir)
	}
	return nil
}

// DetectSrcDirectory reports whether rootDir uses the src/ convention: a
// src directory holding app, pages or components.
func DetectSrcDirectory(rootDir string) bool {
	for _, marker := range srcMarkers {
		if _, err := os.Stat(filepath.Join(rootDir, srcDirName, marker)); err == nil {
			return true
		}
	}
	return false
}

// PagesDir returns the app directory for rootDir.
func PagesDir(rootDir string, useSrc bool) string {
	if useSrc {
		return filepath.Join(rootDir, srcDirName, pagesDirName)
	}
	return filepath.Join(rootDir, pagesDirName)
}

// ResolveOutputPath joins outPath onto the source directory. A leading
// src/, /src/, ./src/ or / is stripped first, so "src/types/routes.ts" and
// "types/routes.ts" name the same file.
func ResolveOutputPath(rootDir, outPath string, useSrc bool) string {
	p := filepath.ToSlash(outPath)
	for _, prefix := range []string{"./src/", "/src/", "src/", "/"} {
		if strings.HasPrefix(p, prefix) {
			p = p[len(prefix):]
			break
		}
	}
	if useSrc {
		return filepath.Join(rootDir, srcDirName, filepath.FromSlash(p))
	}
	return filepath.Join(rootDir, filepath.FromSlash(p))
}
