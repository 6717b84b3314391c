package routes

import (
	"fmt"
	"strings"
)

// SegmentKind classifies one slash-delimited component of a route path.
type SegmentKind int

const (
	// SegmentStatic is a literal path component such as "about".
	SegmentStatic SegmentKind = iota
	// SegmentDynamic is a single required value, written [name].
	SegmentDynamic
	// SegmentCatchAll is one or more values, written [...name].
	SegmentCatchAll
	// SegmentOptionalCatchAll is zero or more values, written [[...name]].
	// When absent the segment is dropped from the built path.
	SegmentOptionalCatchAll
)

// String returns the string representation of the segment kind.
func (k SegmentKind) String() string {
	switch k {
	case SegmentStatic:
		return "static"
	case SegmentDynamic:
		return "dynamic"
	case SegmentCatchAll:
		return "catch-all"
	case SegmentOptionalCatchAll:
		return "optional-catch-all"
	default:
		return "unknown"
	}
}

// ParamType returns the semantic value type of a parameter of this kind.
func (k SegmentKind) ParamType() string {
	switch k {
	case SegmentDynamic:
		return "string"
	case SegmentCatchAll:
		return "string[]"
	case SegmentOptionalCatchAll:
		return "string[] | undefined"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SegmentKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "static":
		*k = SegmentStatic
	case "dynamic":
		*k = SegmentDynamic
	case "catch-all":
		*k = SegmentCatchAll
	case "optional-catch-all":
		*k = SegmentOptionalCatchAll
	default:
		return fmt.Errorf("unknown segment kind %q", string(text))
	}
	return nil
}

// ClassifySegment returns the kind of a single path segment and, for
// bracketed segments, the parameter name it binds.
//
// The most specific form is checked first so that [[...name]] is never
// mistaken for a catch-all or a dynamic segment.
func ClassifySegment(segment string) (SegmentKind, string) {
	switch {
	case strings.HasPrefix(segment, "[[...") && strings.HasSuffix(segment, "]]"):
		return SegmentOptionalCatchAll, segment[len("[[...") : len(segment)-2]
	case strings.HasPrefix(segment, "[...") && strings.HasSuffix(segment, "]"):
		return SegmentCatchAll, segment[len("[...") : len(segment)-1]
	case strings.HasPrefix(segment, "[") && strings.HasSuffix(segment, "]") && len(segment) > 2:
		return SegmentDynamic, segment[1 : len(segment)-1]
	default:
		return SegmentStatic, ""
	}
}

// NormalizePath turns an accumulated directory route into the canonical
// route key: forward slashes only, exactly one leading slash and no trailing
// slash (except for the root). Bracket syntax for all three parameter kinds
// is preserved verbatim.
func NormalizePath(route string) string {
	p := strings.ReplaceAll(route, `\`, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// Segments splits a normalized route path into its components.
// The root path has no segments.
func Segments(routePath string) []string {
	trimmed := strings.Trim(routePath, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// ParamsFromPath derives the ordered parameter list of a route path by
// classifying every bracketed segment.
func ParamsFromPath(routePath string) Params {
	var params Params
	for _, seg := range Segments(routePath) {
		kind, name := ClassifySegment(seg)
		if kind == SegmentStatic {
			continue
		}
		params = params.Set(Param{Name: name, Kind: kind})
	}
	return params
}
