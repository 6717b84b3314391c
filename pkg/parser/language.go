package parser

import (
	"path/filepath"
	"strings"
)

// Language represents a grammar the parser manager can load.
type Language int

const (
	// LanguageTypeScript covers .ts, .mts, .cts and (with JSX enabled) .tsx.
	LanguageTypeScript Language = iota
	// LanguageJavaScript covers .js, .mjs, .cjs and .jsx.
	LanguageJavaScript
	// LanguageUnknown represents an unsupported file.
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// Grammar selects a concrete tree-sitter grammar: a language plus whether
// JSX syntax is enabled.
type Grammar struct {
	Lang Language
	JSX  bool
}

// String returns a short label used in logs.
func (g Grammar) String() string {
	if g.JSX && g.Lang == LanguageTypeScript {
		return "tsx"
	}
	return g.Lang.String()
}

// DetectGrammar picks the grammar for a file path from its extension.
// The second result is false for unsupported extensions.
func DetectGrammar(filePath string) (Grammar, bool) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts":
		return Grammar{Lang: LanguageTypeScript}, true
	case ".tsx":
		return Grammar{Lang: LanguageTypeScript, JSX: true}, true
	case ".js", ".mjs", ".cjs", ".jsx":
		// The JavaScript grammar accepts JSX without a separate variant.
		return Grammar{Lang: LanguageJavaScript}, true
	default:
		return Grammar{Lang: LanguageUnknown}, false
	}
}
