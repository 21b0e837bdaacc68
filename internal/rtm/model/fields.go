package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// textKey holds the character data of an element in the API's XML-derived JSON.
const textKey = "$t"

// object is a decoded JSON object with typed field accessors.
type object map[string]any

func asObject(v any) (object, bool) {
	switch m := v.(type) {
	case map[string]any:
		return object(m), true
	case object:
		return m, true
	}
	return nil, false
}

// scalar renders a JSON leaf as text. Numbers arrive as json.Number when the
// response was decoded with UseNumber.
func scalar(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", true
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		if s {
			return "1", true
		}
		return "0", true
	}
	return "", false
}

func (o object) text(key string) string {
	s, _ := scalar(o[key])
	return s
}

func (o object) optString(key string) *string {
	s := o.text(key)
	if s == "" {
		return nil
	}
	return &s
}

// flag reports whether a boolean-as-string field is "1".
func (o object) flag(key string) bool {
	return o.text(key) == "1"
}

func (o object) integer(entity, key string) (int, error) {
	v, ok := o[key]
	if !ok {
		return 0, malformed(entity, key, ErrMissingKey)
	}
	s, ok := scalar(v)
	if !ok {
		return 0, malformed(entity, key, fmt.Errorf("unexpected %T", v))
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, malformed(entity, key, err)
	}
	return n, nil
}

func (o object) optInt(entity, key string) (*int, error) {
	s := o.text(key)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, malformed(entity, key, err)
	}
	return &n, nil
}

func (o object) optFloat(entity, key string) (*float64, error) {
	s := o.text(key)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, malformed(entity, key, err)
	}
	return &f, nil
}

func (o object) timestamp(entity, key string) (*time.Time, error) {
	s := o.text(key)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return nil, malformed(entity, key, err)
	}
	return &t, nil
}

// member returns o[outer][inner]. A container the API sent as an empty array
// or empty string counts as absent.
func (o object) member(outer, inner string) any {
	c, ok := asObject(o[outer])
	if !ok {
		return nil
	}
	return c[inner]
}

// envelope returns the object stored under a required key. An empty array or
// string in that position is the API's way of saying "nothing here".
func (o object) envelope(entity, key string) (object, error) {
	v, ok := o[key]
	if !ok {
		return nil, malformed(entity, key, ErrMissingKey)
	}
	if inner, ok := asObject(v); ok {
		return inner, nil
	}
	if isEmpty(v) {
		return object{}, nil
	}
	return nil, malformed(entity, key, ErrNotObject)
}

// unwrap strips a self-named envelope when present. Write operations wrap
// their result, listing operations do not.
func (o object) unwrap(key string) object {
	if inner, ok := asObject(o[key]); ok {
		return inner
	}
	return o
}

// extra collects the fields no typed rule claimed. Empty strings are dropped.
func (o object) extra(known ...string) map[string]any {
	var out map[string]any
outer:
	for k, v := range o {
		for _, name := range known {
			if k == name {
				continue outer
			}
		}
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	}
	return false
}

// parseList normalises the three shapes a repeated element can take (absent,
// a bare object, an array) into an ordered slice. The result is never nil.
func parseList[T any](entity string, v any, parse func(object) (T, error)) ([]T, error) {
	out := []T{}
	var items []any
	switch x := v.(type) {
	case []any:
		items = x
	default:
		if isEmpty(v) {
			return out, nil
		}
		items = []any{x}
	}
	for i, item := range items {
		if isEmpty(item) {
			continue
		}
		obj, ok := asObject(item)
		if !ok {
			return nil, malformed(entity, fmt.Sprintf("[%d]", i), ErrNotObject)
		}
		if len(obj) == 0 {
			continue
		}
		parsed, err := parse(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

// parseStrings is parseList for elements that are bare strings, such as tags.
func parseStrings(entity string, v any) ([]string, error) {
	out := []string{}
	var items []any
	switch x := v.(type) {
	case []any:
		items = x
	default:
		items = []any{x}
	}
	for i, item := range items {
		s, ok := scalar(item)
		if !ok {
			return nil, malformed(entity, fmt.Sprintf("[%d]", i), fmt.Errorf("unexpected %T", item))
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
