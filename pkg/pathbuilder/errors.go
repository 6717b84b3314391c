package pathbuilder

import (
	"errors"
	"fmt"
	"strings"
)

// Build errors. Every error returned by Build wraps exactly one of these.
var (
	ErrMissingParameter      = errors.New("missing required parameter")
	ErrInvalidParameterType  = errors.New("invalid parameter type")
	ErrMissingLocale         = errors.New("missing locale")
	ErrInvalidLocale         = errors.New("invalid locale")
	ErrInvalidGeneratedRoute = errors.New("invalid route generated")

	// Only returned by builders holding a route table.
	ErrUnknownRoute          = errors.New("unknown route")
	ErrInvalidContext        = errors.New("invalid context")
	ErrMissingQueryParameter = errors.New("missing required query parameter")
)

// BuildError describes why a route could not be built.
type BuildError struct {
	// Kind is one of the Err* sentinels above.
	Kind error

	// Route is the pattern being built.
	Route string

	// Name is the offending parameter, query key or context, if any.
	Name string

	// Value is the offending value, if any.
	Value any

	// Detail adds a short human explanation.
	Detail string
}

func (e *BuildError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Name != "" {
		fmt.Fprintf(&sb, " %q", e.Name)
	}
	if e.Value != nil {
		fmt.Fprintf(&sb, " (got %v)", e.Value)
	}
	if e.Detail != "" {
		sb.WriteString(": " + e.Detail)
	}
	if e.Route != "" {
		fmt.Fprintf(&sb, " [route %s]", e.Route)
	}
	return sb.String()
}

func (e *BuildError) Unwrap() error {
	return e.Kind
}
