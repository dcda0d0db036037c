package driver

import (
	"fmt"

	"github.com/cosinequanon/ufmt/internal/format"
)

// styleMode resolves the [tool.black] style settings that govern path.
// Files outside any project get the stock mode.
func styleMode(path string) (format.Mode, error) {
	pyPath, ok, err := format.FindPyproject(path)
	if err != nil {
		return format.Mode{}, err
	}
	if !ok {
		return format.DefaultMode(), nil
	}
	raw, err := format.ParsePyproject(pyPath)
	if err != nil {
		return format.Mode{}, err
	}
	mode, err := format.ModeFromOptions(translateStyleOptions(raw))
	if err != nil {
		return format.Mode{}, fmt.Errorf("%s: %w", pyPath, err)
	}
	return mode, nil
}

// translateStyleOptions renames black's flag-flavored keys to Mode option
// names. target_version holds a list on the command line but Mode wants a
// set, and the two skip_* flags are inverted booleans.
func translateStyleOptions(raw map[string]any) map[string]any {
	opts := make(map[string]any, len(raw))
	for key, value := range raw {
		switch key {
		case "target_version":
			opts["target_versions"] = value
		case "skip_string_normalization":
			opts["string_normalization"] = invert(value)
		case "skip_magic_trailing_comma":
			opts["magic_trailing_comma"] = invert(value)
		default:
			opts[key] = value
		}
	}
	return opts
}

// invert flips booleans. Other types pass through unchanged and fail
// later with a type error instead of being silently coerced.
func invert(value any) any {
	if b, ok := value.(bool); ok {
		return !b
	}
	return value
}
