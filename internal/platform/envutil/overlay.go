package envutil

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a flat KEY: value file and exports every key that is not
// already set in the environment. It returns the number of keys applied.
func LoadYAML(path string) (int, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read config file: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return 0, fmt.Errorf("parse config file %s: %w", path, err)
	}
	applied := 0
	for k, v := range values {
		key := strings.ToUpper(strings.TrimSpace(k))
		if key == "" || v == nil {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, scalar(v)); err != nil {
			return applied, fmt.Errorf("set %s: %w", key, err)
		}
		applied++
	}
	return applied, nil
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, scalar(p))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}
