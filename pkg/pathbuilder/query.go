package pathbuilder

import (
	"fmt"
	"net/url"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Query is an insertion-ordered set of query parameters. Values may be a
// string, a []string (the key repeats once per element), nil (the key is
// skipped) or any other scalar, which is formatted with %v.
//
// The zero value is not usable; create one with NewQuery.
type Query struct {
	pairs *orderedmap.OrderedMap[string, any]
}

// NewQuery creates an empty Query.
func NewQuery() *Query {
	return &Query{pairs: orderedmap.New[string, any]()}
}

// Set stores value under key. A key set twice keeps its first position.
func (q *Query) Set(key string, value any) *Query {
	q.pairs.Set(key, value)
	return q
}

// Add appends value to the list stored under key.
func (q *Query) Add(key, value string) *Query {
	existing, ok := q.pairs.Get(key)
	if !ok || existing == nil {
		q.pairs.Set(key, value)
		return q
	}
	switch v := existing.(type) {
	case []string:
		q.pairs.Set(key, append(append([]string(nil), v...), value))
	default:
		q.pairs.Set(key, []string{format(v), value})
	}
	return q
}

// Get returns the value stored under key.
func (q *Query) Get(key string) (any, bool) {
	if q == nil {
		return nil, false
	}
	return q.pairs.Get(key)
}

// Has reports whether key holds a non-nil value.
func (q *Query) Has(key string) bool {
	v, ok := q.Get(key)
	return ok && v != nil
}

// Len returns the number of keys, including keys holding nil.
func (q *Query) Len() int {
	if q == nil {
		return 0
	}
	return q.pairs.Len()
}

// Keys returns the keys in insertion order.
func (q *Query) Keys() []string {
	if q == nil {
		return nil
	}
	keys := make([]string, 0, q.pairs.Len())
	for pair := q.pairs.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Encode serializes the query in insertion order without a leading "?".
func (q *Query) Encode() string {
	if q == nil {
		return ""
	}
	var parts []string
	for pair := q.pairs.Oldest(); pair != nil; pair = pair.Next() {
		key := url.QueryEscape(pair.Key)
		for _, v := range values(pair.Value) {
			parts = append(parts, key+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(parts, "&")
}

// MarshalJSON encodes the query as a JSON object in insertion order.
func (q *Query) MarshalJSON() ([]byte, error) {
	if q == nil || q.pairs == nil {
		return []byte("{}"), nil
	}
	return q.pairs.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input.
func (q *Query) UnmarshalJSON(data []byte) error {
	if q.pairs == nil {
		q.pairs = orderedmap.New[string, any]()
	}
	return q.pairs.UnmarshalJSON(data)
}

// ParseQuery parses a raw query string such as "a=1&b=2&b=3", keeping key
// order. Repeated keys become lists.
func ParseQuery(raw string) (*Query, error) {
	q := NewQuery()
	raw = strings.TrimPrefix(raw, "?")
	if raw == "" {
		return q, nil
	}
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("invalid query key %q: %w", k, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("invalid query value %q: %w", v, err)
		}
		q.Add(key, value)
	}
	return q, nil
}

// values flattens a query value into its string elements.
func values(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, el := range val {
			if el != nil {
				out = append(out, format(el))
			}
		}
		return out
	default:
		return []string{format(val)}
	}
}

func format(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
