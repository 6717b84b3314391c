// Package pathbuilder turns a route pattern such as /users/[userId] and a
// bag of parameters into a concrete URL path.
//
// Every failure is reported as a *BuildError; nothing is swallowed and no
// malformed URL is ever returned.
package pathbuilder

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/gnana997/saferoutes/pkg/routes"
)

// Config is the per-call input of Build. All fields are optional; which
// ones a route needs is checked at build time.
type Config struct {
	// Params maps parameter names to a string (for [name]) or a []string
	// (for [...name] and [[...name]]).
	Params map[string]any

	// Query is appended as the query string.
	Query *Query

	// Context selects a parallel route branch. It only affects validation
	// and is never rendered.
	Context string

	// Locale overrides the builder's default locale.
	Locale string
}

// Option configures a Builder.
type Option func(*Builder)

// WithI18N enables locale prefixes. The locale of a call is its Config
// Locale, then defaultLocale, then locales[0]. A non-empty locales list is
// also an allow-list.
func WithI18N(locales []string, defaultLocale string) Option {
	return func(b *Builder) {
		b.i18n = true
		b.locales = append([]string(nil), locales...)
		b.defaultLocale = defaultLocale
	}
}

// WithRoutes attaches a route table. Patterns outside the table, unknown
// contexts and missing required query keys are then rejected.
func WithRoutes(mapping routes.Mapping) Option {
	return func(b *Builder) {
		b.routes = mapping
	}
}

// Builder builds paths. It is immutable after New and safe for concurrent
// use.
type Builder struct {
	i18n          bool
	locales       []string
	defaultLocale string
	routes        routes.Mapping
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var defaultBuilder = New()

// Build builds pattern with a Builder that has neither locales nor a route
// table.
func Build(pattern string, cfg *Config) (string, error) {
	return defaultBuilder.Build(pattern, cfg)
}

// I18N reports whether locale prefixes are enabled.
func (b *Builder) I18N() bool {
	return b.i18n
}

// Routes returns the attached route table, or nil.
func (b *Builder) Routes() routes.Mapping {
	return b.routes
}

// Build substitutes the placeholders of pattern, applies the locale prefix
// and appends the query string.
func (b *Builder) Build(pattern string, cfg *Config) (string, error) {
	if cfg == nil && !b.i18n && b.routes == nil && !strings.Contains(pattern, "[") {
		return pattern, nil
	}
	if cfg == nil {
		cfg = &Config{}
	}

	if b.routes != nil {
		if err := b.checkRoute(pattern, cfg); err != nil {
			return "", err
		}
	}

	path, err := substitute(pattern, cfg.Params)
	if err != nil {
		return "", err
	}

	if b.i18n {
		locale, err := b.resolveLocale(pattern, cfg.Locale)
		if err != nil {
			return "", err
		}
		path = "/" + url.PathEscape(locale) + path
	}

	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if query := cfg.Query.Encode(); query != "" {
		path += "?" + query
	}

	u, err := url.Parse(path)
	if err != nil || u.Scheme != "" || u.Host != "" {
		detail := "not a relative reference"
		if err != nil {
			detail = err.Error()
		}
		return "", &BuildError{Kind: ErrInvalidGeneratedRoute, Route: pattern, Value: path, Detail: detail}
	}

	return path, nil
}

// substitute replaces every bracketed segment of pattern with its value.
// Absent or empty optional catch-alls drop their segment.
func substitute(pattern string, params map[string]any) (string, error) {
	if !strings.Contains(pattern, "[") {
		return pattern, nil
	}

	segments := strings.Split(pattern, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		kind, name := routes.ClassifySegment(seg)
		if kind == routes.SegmentStatic {
			out = append(out, seg)
			continue
		}

		value, present := params[name]
		if value == nil {
			present = false
		}

		switch kind {
		case routes.SegmentDynamic:
			if !present {
				return "", &BuildError{Kind: ErrMissingParameter, Route: pattern, Name: name}
			}
			s, ok := value.(string)
			if !ok {
				return "", typeError(pattern, name, value, "expected a string")
			}
			if s == "" {
				return "", typeError(pattern, name, nil, "expected a non-empty string")
			}
			out = append(out, url.PathEscape(s))

		case routes.SegmentCatchAll:
			if !present {
				return "", &BuildError{Kind: ErrMissingParameter, Route: pattern, Name: name}
			}
			list, ok := stringList(value)
			if !ok {
				return "", typeError(pattern, name, value, "expected a list of strings")
			}
			if len(list) == 0 {
				return "", typeError(pattern, name, nil, "expected at least one element")
			}
			out = append(out, joinEscaped(list))

		case routes.SegmentOptionalCatchAll:
			if !present {
				continue
			}
			list, ok := stringList(value)
			if !ok {
				return "", typeError(pattern, name, value, "expected a list of strings")
			}
			if len(list) == 0 {
				continue
			}
			out = append(out, joinEscaped(list))
		}
	}

	path := strings.Join(out, "/")
	if path == "" {
		path = "/"
	}
	return path, nil
}

func (b *Builder) resolveLocale(pattern, explicit string) (string, error) {
	locale := explicit
	if locale == "" {
		locale = b.defaultLocale
	}
	if locale == "" && len(b.locales) > 0 {
		locale = b.locales[0]
	}
	if locale == "" {
		return "", &BuildError{
			Kind:   ErrMissingLocale,
			Route:  pattern,
			Detail: "set a locale on the call or configure a default locale or locale list",
		}
	}
	if len(b.locales) > 0 && !slices.Contains(b.locales, locale) {
		return "", &BuildError{
			Kind:   ErrInvalidLocale,
			Route:  pattern,
			Name:   locale,
			Detail: "expected one of " + strings.Join(b.locales, ", "),
		}
	}
	return locale, nil
}

// checkRoute validates cfg against the attached route table.
func (b *Builder) checkRoute(pattern string, cfg *Config) error {
	rc, ok := b.routes.Lookup(routes.NormalizePath(pattern))
	if !ok || rc.OmitFromRoutes {
		return &BuildError{Kind: ErrUnknownRoute, Name: pattern}
	}

	query := rc.Query
	contexts := rc.VisibleContexts()
	switch {
	case cfg.Context != "":
		if !slices.Contains(contexts, cfg.Context) {
			detail := "route has no parallel contexts"
			if len(contexts) > 0 {
				detail = "expected one of " + strings.Join(contexts, ", ")
			}
			return &BuildError{Kind: ErrInvalidContext, Route: pattern, Name: cfg.Context, Detail: detail}
		}
		query = rc.ParallelRoutes[cfg.Context].Query
	case len(contexts) > 0:
		return &BuildError{
			Kind:   ErrInvalidContext,
			Route:  pattern,
			Detail: "a context is required, expected one of " + strings.Join(contexts, ", "),
		}
	}

	if query != nil {
		for _, key := range query.Required {
			if !cfg.Query.Has(key) {
				return &BuildError{Kind: ErrMissingQueryParameter, Route: pattern, Name: key}
			}
		}
	}
	return nil
}

func typeError(pattern, name string, value any, detail string) error {
	if value != nil {
		value = fmt.Sprintf("%T", value)
	}
	return &BuildError{Kind: ErrInvalidParameterType, Route: pattern, Name: name, Value: value, Detail: detail}
}

// stringList accepts a []string, or a []any holding only strings as
// produced by JSON decoding.
func stringList(v any) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		for _, el := range val {
			s, ok := el.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func joinEscaped(list []string) string {
	escaped := make([]string, len(list))
	for i, s := range list {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}
