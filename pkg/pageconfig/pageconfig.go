// Package pageconfig reads the optional per-page configuration fragment
// (page.config.ts) that sits next to a page file.
//
// Fragments are parsed with tree-sitter and never executed. Only a
// top-level binding named config whose initializer is an object literal is
// recognized:
//
//	export const config = {
//	  searchParams: { required: ['q'], optional: ['sort'] },
//	  omitFromRoutes: false,
//	} satisfies PageConfig;
//
// Anything else in the file is ignored, and fields of an unexpected shape
// are left unset.
package pageconfig

import (
	"path/filepath"
	"strings"

	"github.com/gnana997/saferoutes/pkg/routes"
)

// SearchParams lists the query keys declared by a page.
type SearchParams struct {
	Required []string `json:"required,omitempty"`
	Optional []string `json:"optional,omitempty"`
}

// PageConfig is the extracted content of a page config fragment. Nil
// fields were not declared.
type PageConfig struct {
	SearchParams   *SearchParams `json:"searchParams,omitempty"`
	OmitFromRoutes *bool         `json:"omitFromRoutes,omitempty"`
}

// Query converts the declared search params into a route query config.
func (pc *PageConfig) Query() *routes.QueryConfig {
	if pc == nil || pc.SearchParams == nil {
		return nil
	}
	return &routes.QueryConfig{
		Required: append([]string(nil), pc.SearchParams.Required...),
		Optional: append([]string(nil), pc.SearchParams.Optional...),
	}
}

// Omit reports whether the page asked to be left out of the route table.
func (pc *PageConfig) Omit() bool {
	return pc != nil && pc.OmitFromRoutes != nil && *pc.OmitFromRoutes
}

var pageFiles = map[string]string{
	"page.tsx": "page.config.ts",
	"page.ts":  "page.config.ts",
	"page.jsx": "page.config.js",
	"page.js":  "page.config.js",
}

// IsPageFile reports whether name marks a route leaf.
func IsPageFile(name string) bool {
	_, ok := pageFiles[name]
	return ok
}

// IsFragmentFile reports whether name is a page config fragment.
func IsFragmentFile(name string) bool {
	return name == "page.config.ts" || name == "page.config.js"
}

// FragmentPath returns the config fragment path for a page file path.
// TypeScript pages use page.config.ts, JavaScript pages page.config.js.
func FragmentPath(pagePath string) string {
	dir, name := filepath.Split(pagePath)
	if fragment, ok := pageFiles[name]; ok {
		return filepath.Join(dir, fragment)
	}
	ext := filepath.Ext(name)
	return filepath.Join(dir, strings.TrimSuffix(name, ext)+".config"+ext)
}
