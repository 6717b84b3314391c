package pageconfig

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// bindingName is the only top-level binding the reader looks at.
const bindingName = "config"

// wrapperKinds are expressions that only annotate their operand, e.g.
// `{...} satisfies PageConfig`, `{...} as const`, `({...})`.
var wrapperKinds = map[string]bool{
	"satisfies_expression":     true,
	"as_expression":            true,
	"parenthesized_expression": true,
	"non_null_expression":      true,
	"type_assertion":           true,
}

// unwrap strips annotation wrappers and returns the underlying expression.
func unwrap(node *ts.Node) *ts.Node {
	for node != nil && wrapperKinds[node.Kind()] {
		var inner *ts.Node
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child == nil || child.Kind() == "comment" {
				continue
			}
			// type_assertion is `<T>expr`: the operand follows the type.
			if node.Kind() == "type_assertion" && child.Kind() == "type_arguments" {
				continue
			}
			inner = child
			break
		}
		node = inner
	}
	return node
}

// extractConfig reads the fields of the config object literal.
func extractConfig(obj *ts.Node, src []byte) *PageConfig {
	pc := &PageConfig{}
	forEachPair(obj, src, func(key string, value *ts.Node) {
		switch key {
		case "searchParams":
			if sp := extractSearchParams(value, src); sp != nil {
				pc.SearchParams = sp
			}
		case "omitFromRoutes":
			switch value.Kind() {
			case "true":
				v := true
				pc.OmitFromRoutes = &v
			case "false":
				v := false
				pc.OmitFromRoutes = &v
			}
		}
	})
	return pc
}

func extractSearchParams(node *ts.Node, src []byte) *SearchParams {
	if node.Kind() != "object" {
		return nil
	}
	sp := &SearchParams{}
	forEachPair(node, src, func(key string, value *ts.Node) {
		if value.Kind() != "array" {
			return
		}
		switch key {
		case "required":
			sp.Required = stringElements(value, src)
		case "optional":
			sp.Optional = stringElements(value, src)
		}
	})
	return sp
}

// forEachPair calls fn for every `key: value` property of an object
// literal, with the value already unwrapped. Computed keys, spreads,
// methods and shorthand properties are skipped.
func forEachPair(obj *ts.Node, src []byte, fn func(key string, value *ts.Node)) {
	for i := uint(0); i < obj.NamedChildCount(); i++ {
		pair := obj.NamedChild(i)
		if pair == nil || pair.Kind() != "pair" {
			continue
		}
		keyNode := pair.ChildByFieldName("key")
		valueNode := unwrap(pair.ChildByFieldName("value"))
		if keyNode == nil || valueNode == nil {
			continue
		}
		key, ok := propertyKey(keyNode, src)
		if !ok {
			continue
		}
		fn(key, valueNode)
	}
}

func propertyKey(node *ts.Node, src []byte) (string, bool) {
	switch node.Kind() {
	case "property_identifier", "identifier":
		return node.Utf8Text(src), true
	case "string":
		return stringLiteral(node, src), true
	default:
		return "", false
	}
}

// stringElements returns the string literal elements of an array literal.
// Non-string elements are ignored.
func stringElements(array *ts.Node, src []byte) []string {
	out := []string{}
	for i := uint(0); i < array.NamedChildCount(); i++ {
		el := unwrap(array.NamedChild(i))
		if el == nil {
			continue
		}
		switch el.Kind() {
		case "string":
			out = append(out, stringLiteral(el, src))
		case "template_string":
			if !hasSubstitution(el) {
				out = append(out, stringLiteral(el, src))
			}
		}
	}
	return out
}

func hasSubstitution(node *ts.Node) bool {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil && child.Kind() == "template_substitution" {
			return true
		}
	}
	return false
}

// stringLiteral returns the content of a quoted literal without its quotes.
func stringLiteral(node *ts.Node, src []byte) string {
	text := node.Utf8Text(src)
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '\'' || first == '"' || first == '`') && last == first {
			text = text[1 : len(text)-1]
		}
	}
	return text
}
