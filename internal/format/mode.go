package format

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"

	"github.com/cosinequanon/ufmt/internal/project"
	"github.com/cosinequanon/ufmt/internal/pyproject"
)

// Mode holds the style options honoured by Format.
type Mode struct {
	// TargetVersions is the set of Python versions the formatted code
	// must support, e.g. "py38". Empty means all supported versions.
	TargetVersions map[string]struct{}
	// LineLength is the preferred maximum line length. The lexical
	// passes never re-wrap lines, but the value is validated and
	// carried so diagnostics and future passes agree on it.
	LineLength int
	// StringNormalization enables rewriting quote characters to
	// double quotes where that cannot change the string value.
	StringNormalization bool
	// MagicTrailingComma keeps a trailing comma the author wrote.
	// When disabled, removable trailing commas are dropped.
	MagicTrailingComma bool
}

// DefaultLineLength matches the style's canonical line length.
const DefaultLineLength = 88

// DefaultMode returns the canonical style configuration.
func DefaultMode() Mode {
	return Mode{
		LineLength:          DefaultLineLength,
		StringNormalization: true,
		MagicTrailingComma:  true,
	}
}

var validTargetVersions = map[string]struct{}{
	"py27": {}, "py33": {}, "py34": {}, "py35": {}, "py36": {},
	"py37": {}, "py38": {}, "py39": {}, "py310": {}, "py311": {},
	"py312": {}, "py313": {},
}

// FindPyproject locates the configuration file governing path: the
// project root's pyproject.toml, when the root has one.
func FindPyproject(path string) (string, bool, error) {
	root, err := project.FindRoot(path)
	if err != nil {
		return "", false, err
	}
	candidate := filepath.Join(root, pyproject.FileName)
	info, statErr := os.Stat(candidate)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to stat %q: %w", candidate, statErr)
	}
	if !info.Mode().IsRegular() {
		return "", false, nil
	}
	return candidate, true, nil
}

// ParsePyproject reads the [tool.black] table from path as a raw
// option mapping. Key spellings are normalized the way the CLI would:
// leading dashes stripped, remaining dashes folded to underscores.
// A missing table yields an empty mapping.
func ParsePyproject(path string) (map[string]any, error) {
	doc, err := pyproject.LoadRaw(path)
	if err != nil {
		return nil, err
	}
	raw, ok := pyproject.Tool(doc, "black")
	if !ok {
		return map[string]any{}, nil
	}
	table, ok := pyproject.Table(raw)
	if !ok {
		return map[string]any{}, nil
	}

	opts := make(map[string]any, len(table))
	for key, value := range table {
		key = strings.TrimPrefix(key, "--")
		key = strings.ReplaceAll(key, "-", "_")
		opts[key] = value
	}
	return opts, nil
}

// ModeFromOptions builds a Mode from a raw option mapping, starting
// from defaults. Unrecognized keys are discarded; recognized keys with
// impossible values are errors.
func ModeFromOptions(opts map[string]any) (Mode, error) {
	mode := DefaultMode()
	for key, value := range opts {
		switch key {
		case "target_versions":
			versions, err := coerceVersions(value)
			if err != nil {
				return Mode{}, err
			}
			mode.TargetVersions = versions
		case "line_length":
			length, err := coerceLineLength(value)
			if err != nil {
				return Mode{}, err
			}
			mode.LineLength = length
		case "string_normalization":
			b, ok := value.(bool)
			if !ok {
				return Mode{}, fmt.Errorf("string_normalization must be a boolean, got %T", value)
			}
			mode.StringNormalization = b
		case "magic_trailing_comma":
			b, ok := value.(bool)
			if !ok {
				return Mode{}, fmt.Errorf("magic_trailing_comma must be a boolean, got %T", value)
			}
			mode.MagicTrailingComma = b
		}
	}
	return mode, nil
}

func coerceVersions(value any) (map[string]struct{}, error) {
	var names []string
	switch v := value.(type) {
	case map[string]struct{}:
		for name := range v {
			names = append(names, name)
		}
	case []string:
		names = v
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("target_versions must name versions, got %T", item)
			}
			names = append(names, s)
		}
	case string:
		names = []string{v}
	default:
		return nil, fmt.Errorf("target_versions must be a list, got %T", value)
	}

	versions := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.ToLower(name)
		if _, ok := validTargetVersions[name]; !ok {
			return nil, fmt.Errorf("invalid target version %q", name)
		}
		versions[name] = struct{}{}
	}
	return versions, nil
}

func coerceLineLength(value any) (int, error) {
	switch v := value.(type) {
	case int64:
		length, err := safecast.Conv[int](v)
		if err != nil || length <= 0 {
			return 0, fmt.Errorf("line_length must be a positive integer, got %v", v)
		}
		return length, nil
	case int:
		if v <= 0 {
			return 0, fmt.Errorf("line_length must be a positive integer, got %d", v)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("line_length must be an integer, got %T", value)
	}
}
