package feed

import (
	"os"
	"regexp"
)

var envPlaceholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandPlaceholders recursively substitutes ${ENV_VAR} placeholders in
// strings, maps and sequences. Unset variables substitute the empty string,
// which downstream code treats as "credential not provided".
func ExpandPlaceholders(v any) any {
	switch val := v.(type) {
	case string:
		return envPlaceholder.ReplaceAllStringFunc(val, func(m string) string {
			return os.Getenv(m[2 : len(m)-1])
		})
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = ExpandPlaceholders(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ExpandPlaceholders(item)
		}
		return out
	default:
		return v
	}
}

// RouteParams resolves the per-source parameter maps. Every name known to
// the registry gets an entry, an empty Params when the config carries none,
// so callers can index without presence checks. Configured names the
// registry does not know are dropped.
func RouteParams(reg *Registry, configured map[string]map[string]any) map[string]Params {
	out := make(map[string]Params, len(reg.order))
	for _, name := range reg.order {
		src := configured[name]
		params := make(Params, len(src))
		for k, v := range src {
			params[k] = ExpandPlaceholders(v)
		}
		out[name] = params
	}
	return out
}
