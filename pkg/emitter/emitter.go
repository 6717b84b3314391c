// Package emitter renders a route table as a TypeScript type definition.
//
// Output is deterministic for a given table and clock: omitted routes are
// dropped, the rest sorted by path, and parallel contexts sorted by name.
package emitter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gnana997/saferoutes/pkg/routes"
)

const header = "// This file is auto-generated. Do not edit manually.\n"

// timestampLayout is RFC 3339 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

const docBlock = `/**
 * Routes Type Definition
 *
 * This type represents all the routes in the application, with their respective
 * parameters and query configurations. For parallel routes with the same path,
 * configurations are merged according to the following rules:
 * - A route is left out only when every contributing page sets omitFromRoutes
 * - A context whose page sets omitFromRoutes is left out of the context union
 * - When a context is selected, its specific query parameters become required
 *
 * Structure:
 * - Each key is a route path (e.g., '/users/[id]')
 * - Each value is an object with the following properties:
 *   - params: An object representing path parameters
 *     - Dynamic segments are represented as [paramName]: string
 *     - Catch-all segments are represented as [...paramName]: string[]
 *     - Optional catch-all segments are represented as [[...paramName]]?: string[]
 *   - query: An object representing query parameters
 *     - Always includes Record<string, string> to allow for any string key-value pairs
 *     - Declared required keys are typed key: string, optional ones key?: string
 *   - context: For parallel routes, the slot whose query parameters apply
 *
 * Example:
 * '/products': { context: 'tshirts' | 'pants'; } & (
 *   | { context: 'tshirts'; query: Record<string, string> & { color: string; size?: string } }
 *   | { context: 'pants'; query?: Record<string, string>; }
 * )
 *
 * Usage:
 * - Use the Routes type for type-safe routing in your application
 * - Additional query parameters can be added freely due to Record<string, string>
 *
 * Note: This file is auto-generated. Do not edit manually.
 */`

// Options configures an Emitter.
type Options struct {
	// Now supplies the timestamp written into the header. Defaults to
	// time.Now.
	Now func() time.Time

	// Locales, when set, adds an optional locale key listing them to every
	// route.
	Locales []string
}

// Emitter renders route tables. It holds no mutable state.
type Emitter struct {
	now     func() time.Time
	locales []string
}

// New creates an Emitter.
func New(opts Options) *Emitter {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Emitter{
		now:     now,
		locales: append([]string(nil), opts.Locales...),
	}
}

// Emit renders the full type definition file for mapping.
func (e *Emitter) Emit(mapping routes.Mapping) string {
	var sb strings.Builder

	sb.WriteString(header)
	fmt.Fprintf(&sb, "// Modified at %s\n\n", e.now().UTC().Format(timestampLayout))
	sb.WriteString(docBlock)
	sb.WriteString("\n\nexport type Routes = {\n")

	lines := make([]string, 0, len(mapping))
	for _, path := range mapping.Visible() {
		lines = append(lines, e.route(path, mapping[path]))
	}
	sb.WriteString(strings.Join(lines, ";\n"))
	if len(lines) > 0 {
		sb.WriteString(";\n")
	}

	sb.WriteString("};\n\nexport type Path = keyof Routes;\n")
	return sb.String()
}

// Routes renders only the route entries, one per line, without header or
// trailing separators.
func (e *Emitter) Routes(mapping routes.Mapping) []string {
	paths := mapping.Visible()
	lines := make([]string, 0, len(paths))
	for _, path := range paths {
		lines = append(lines, strings.TrimPrefix(e.route(path, mapping[path]), "  "))
	}
	return lines
}

func (e *Emitter) route(path string, cfg *routes.RouteConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s: { ", quote(path))
	sb.WriteString(params(cfg.Params))

	contexts := cfg.VisibleContexts()
	if len(contexts) == 0 {
		q := query(cfg.Query)
		sb.WriteString(q)
		sb.WriteString(e.locale(q))
		sb.WriteString(" }")
		return sb.String()
	}

	quoted := make([]string, len(contexts))
	for i, name := range contexts {
		quoted[i] = quote(name)
	}
	fmt.Fprintf(&sb, "context: %s;", strings.Join(quoted, " | "))
	if loc := e.locale(";"); loc != "" {
		sb.WriteString(loc + ";")
	}
	sb.WriteString(" } & (\n  ")

	branches := make([]string, len(contexts))
	for i, name := range contexts {
		branches[i] = fmt.Sprintf("| { context: %s; %s }", quote(name), query(cfg.ParallelRoutes[name].Query))
	}
	sb.WriteString(strings.Join(branches, "\n    "))
	sb.WriteString("\n)")
	return sb.String()
}

// params renders the params block followed by "; ", or nothing when the
// route has no parameters.
func params(ps routes.Params) string {
	if len(ps) == 0 {
		return ""
	}
	fields := make([]string, len(ps))
	for i, p := range ps {
		switch p.Kind {
		case routes.SegmentOptionalCatchAll:
			fields[i] = key(p.Name) + "?: string[]"
		default:
			fields[i] = key(p.Name) + ": " + p.Kind.ParamType()
		}
	}
	field := "params"
	if ps.AllOptional() {
		field = "params?"
	}
	return fmt.Sprintf("%s: { %s }; ", field, strings.Join(fields, "; "))
}

// query renders the query field. Without declared keys it is an optional
// free-form record; declared keys are intersected onto it, and the field is
// required as soon as one key is.
func query(q *routes.QueryConfig) string {
	if q.Empty() {
		return "query?: Record<string, string>;"
	}
	fields := make([]string, 0, len(q.Required)+len(q.Optional))
	for _, k := range q.Required {
		fields = append(fields, key(k)+": string")
	}
	for _, k := range q.Optional {
		fields = append(fields, key(k)+"?: string")
	}
	field := "query"
	if len(q.Required) == 0 {
		field = "query?"
	}
	return fmt.Sprintf("%s: Record<string, string> & { %s }", field, strings.Join(fields, "; "))
}

// locale renders the optional locale field to follow prev.
func (e *Emitter) locale(prev string) string {
	if len(e.locales) == 0 {
		return ""
	}
	quoted := make([]string, len(e.locales))
	for i, l := range e.locales {
		quoted[i] = quote(l)
	}
	sep := "; "
	if strings.HasSuffix(prev, ";") {
		sep = " "
	}
	return sep + "locale?: " + strings.Join(quoted, " | ")
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// key renders a property name, quoting it unless it is a plain identifier.
func key(name string) string {
	if identifier.MatchString(name) {
		return name
	}
	return quote(name)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
