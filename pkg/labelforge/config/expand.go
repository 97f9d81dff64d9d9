package config

import (
	"os"
	"regexp"
	"strings"
)

// envRef matches a string that is exactly one ${NAME} reference. Strings
// merely containing a reference are left alone.
var envRef = regexp.MustCompile(`^\$\{([^}]+)\}$`)

// ExpandEnv replaces ${NAME} strings in a decoded YAML value with the
// corresponding entry from env, recursing through mappings and sequences.
// A reference to a variable absent from env expands to nil, so a required
// field pointing at an unset variable fails schema validation instead of
// silently becoming empty.
//
// The environment is an explicit parameter rather than read from the
// process so callers (and tests) control exactly what is visible.
func ExpandEnv(value any, env map[string]string) any {
	switch v := value.(type) {
	case string:
		m := envRef.FindStringSubmatch(v)
		if m == nil {
			return v
		}
		resolved, ok := env[m[1]]
		if !ok {
			return nil
		}
		return resolved
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = ExpandEnv(val, env)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = ExpandEnv(val, env)
		}
		return out
	default:
		return value
	}
}

// EnvMap snapshots the process environment into the mapping ExpandEnv
// expects.
func EnvMap() map[string]string {
	env := make(map[string]string)
	for _, entry := range os.Environ() {
		if key, value, ok := strings.Cut(entry, "="); ok {
			env[key] = value
		}
	}
	return env
}
