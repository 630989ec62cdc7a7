package feed

import (
	"fmt"
	"strconv"
)

// Params carries one source's configuration values as routed from the config
// file. Values are whatever the YAML decoder produced; the typed getters
// reject wrong-typed values with an error, which the source propagates out of
// Fetch as a configuration error.
type Params map[string]any

// Int returns the named integer parameter, or def when absent.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		if n == "" {
			return def, nil
		}
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("param %q: cannot parse %q as int", key, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("param %q: expected int, got %T", key, v)
	}
}

// Str returns the named string parameter, or def when absent.
func (p Params) Str(key, def string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %q: expected string, got %T", key, v)
	}
	return s, nil
}

// StrSlice returns a parameter given either as a single string or as a list
// of strings.
func (p Params) StrSlice(key string) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return nil, nil
		}
		return []string{s}, nil
	case []string:
		return s, nil
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("param %q: expected string elements, got %T", key, item)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("param %q: expected string or list, got %T", key, v)
	}
}
