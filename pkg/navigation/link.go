package navigation

import (
	"html"
	"strings"

	"github.com/gnana997/saferoutes/pkg/pathbuilder"
)

// FallbackHref is the inert target of a link whose route failed to build.
const FallbackHref = "#"

// Attr is an extra anchor attribute.
type Attr struct {
	Key   string
	Value string
}

// Prefetch marks a link for prefetching by the host.
func Prefetch() Attr {
	return Attr{Key: "data-prefetch", Value: "true"}
}

// Anchor is a built link.
type Anchor struct {
	Href  string
	Attrs []Attr

	// Fallback is set when the route failed to build and Href is
	// FallbackHref.
	Fallback bool
}

// HTML renders the anchor as an <a> element around text. Text and
// attribute values are escaped.
func (a Anchor) HTML(text string) string {
	var sb strings.Builder
	sb.WriteString(`<a href="`)
	sb.WriteString(html.EscapeString(a.Href))
	sb.WriteString(`"`)
	for _, attr := range a.Attrs {
		if attr.Key == "" || strings.EqualFold(attr.Key, "href") {
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(html.EscapeString(attr.Key))
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(attr.Value))
		sb.WriteString(`"`)
	}
	sb.WriteString(">")
	sb.WriteString(html.EscapeString(text))
	sb.WriteString("</a>")
	return sb.String()
}

// Link builds an anchor to pattern. It never fails: a build error is logged
// and yields a fallback anchor pointing at FallbackHref.
func (n *Navigation) Link(pattern string, cfg *pathbuilder.Config, attrs ...Attr) Anchor {
	href, err := n.builder.Build(pattern, cfg)
	if err != nil {
		n.logger.Error("failed to build link, using fallback",
			"route", pattern,
			"error", err)
		return Anchor{Href: FallbackHref, Attrs: attrs, Fallback: true}
	}
	return Anchor{Href: href, Attrs: attrs}
}
