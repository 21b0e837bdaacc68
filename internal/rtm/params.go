package rtm

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cast"

	"mtask/internal/rtm/model"
)

// Args are the caller-supplied parameters of a method call. Values are
// stringified with stringify.
type Args map[string]any

// stringify renders a parameter value the way the API expects: booleans as
// "1"/"0", times as UTC timestamps, everything else through cast.
func stringify(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case time.Time:
		return x.UTC().Format(model.TimeLayout), nil
	case *time.Time:
		if x == nil {
			return "", nil
		}
		return x.UTC().Format(model.TimeLayout), nil
	}
	return cast.ToStringE(v)
}

// encode appends args to q sorted by name so identical calls produce
// identical URLs.
func (a Args) encode(method string, q *Query) error {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	slices.Sort(names)
	for _, k := range names {
		s, err := stringify(a[k])
		if err != nil {
			return fmt.Errorf("rtm: %s: parameter %s: %w", method, k, err)
		}
		q.Set(k, s)
	}
	return nil
}
