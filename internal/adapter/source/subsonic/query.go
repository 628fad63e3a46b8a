package subsonic

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
)

// Query accumulates request parameters for a remote action
type Query struct {
	values url.Values
}

// With starts a query with a single key/value pair
func With(key string, value any) *Query {
	return NewQuery().Arg(key, value)
}

// NewQuery returns an empty query
func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

// Arg sets key to value. A nil value (including a typed nil pointer) is
// skipped, so optional parameters can be passed straight through.
func (q *Query) Arg(key string, value any) *Query {
	if s, ok := formatValue(value); ok {
		q.values.Set(key, s)
	}
	return q
}

// ArgList appends every value under key, preserving order and duplicates
func (q *Query) ArgList(key string, values []string) *Query {
	for _, v := range values {
		q.values.Add(key, v)
	}
	return q
}

// Build returns the finalized parameter set
func (q *Query) Build() url.Values {
	out := make(url.Values, len(q.values))
	for k, v := range q.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// formatValue renders a scalar parameter. Pointers are dereferenced.
func formatValue(value any) (string, bool) {
	if value == nil {
		return "", false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		return formatValue(rv.Elem().Interface())
	}

	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}
