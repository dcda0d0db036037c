// Package pyproject reads pyproject.toml documents.
//
// Tool configuration lives under [tool.<name>] tables. Discovery and
// decoding are shared here; interpreting a given tool's table is the
// caller's business.
package pyproject

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the canonical configuration file name.
const FileName = "pyproject.toml"

// Locate walks up from start and returns the path of the nearest
// pyproject.toml. ok is false when no ancestor directory has one.
// A file path starts the walk from its parent directory.
func Locate(start string) (path string, ok bool, err error) {
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		info, statErr := os.Stat(candidate)
		if statErr == nil && info.Mode().IsRegular() {
			return candidate, true, nil
		}
		if statErr != nil && !os.IsNotExist(statErr) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, statErr)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// LoadRaw decodes an entire pyproject.toml into a generic mapping.
func LoadRaw(path string) (map[string]any, error) {
	doc := map[string]any{}
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return doc, nil
}

// Tool returns the raw value stored under [tool.<name>], if any.
// The value is not coerced; use Table when a mapping is expected.
func Tool(doc map[string]any, name string) (any, bool) {
	toolAny, ok := doc["tool"]
	if !ok {
		return nil, false
	}
	tool, ok := toolAny.(map[string]any)
	if !ok {
		return nil, false
	}
	raw, ok := tool[name]
	return raw, ok
}

// Table coerces a raw TOML value into a string-keyed mapping.
func Table(v any) (map[string]any, bool) {
	table, ok := v.(map[string]any)
	return table, ok
}

// Strings coerces a raw TOML array into a slice of strings.
// Non-string elements report ok=false.
func Strings(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// CoerceStrings renders a raw TOML array as strings, printing
// non-string elements. Only non-array values report ok=false.
func CoerceStrings(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	default:
		return nil, false
	}
}
