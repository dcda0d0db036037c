// Package usort sorts the import blocks of Python modules.
//
// Sorting is deliberately conservative: statements are reordered, but
// never rewritten. Anything the scanner cannot prove is a movable
// top-level import stays exactly where it is.
package usort

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/cosinequanon/ufmt/internal/log"
	"github.com/cosinequanon/ufmt/internal/pyproject"
)

// Category names in their default sort order.
const (
	CategoryFuture     = "future"
	CategoryStdlib     = "standard_library"
	CategoryThirdParty = "third_party"
	CategoryFirstParty = "first_party"
)

// Config controls categorisation of imports. Settings come from the
// [tool.usort] table of the nearest pyproject.toml.
type Config struct {
	// Categories lists category names in output order.
	Categories []string
	// DefaultCategory receives modules matching nothing else.
	DefaultCategory string
	// SideEffects holds dotted-name patterns for modules imported for
	// their side effects. Matching statements never move. Patterns may
	// use * wildcards, e.g. "kivy.*".
	SideEffects []string
	// Known maps a module name prefix to an explicit category.
	Known map[string]string
}

// DefaultConfig returns the standard four-category configuration.
func DefaultConfig() Config {
	return Config{
		Categories: []string{
			CategoryFuture,
			CategoryStdlib,
			CategoryThirdParty,
			CategoryFirstParty,
		},
		DefaultCategory: CategoryThirdParty,
	}
}

// FindConfig loads sorting configuration for the file at path,
// performing its own walk to the nearest pyproject.toml. Files outside
// any configured project sort with DefaultConfig.
func FindConfig(fpath string) (Config, error) {
	cfg := DefaultConfig()

	pyPath, ok, err := pyproject.Locate(fpath)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return cfg, nil
	}

	doc, err := pyproject.LoadRaw(pyPath)
	if err != nil {
		return Config{}, err
	}
	raw, ok := pyproject.Tool(doc, "usort")
	if !ok {
		return cfg, nil
	}
	table, ok := pyproject.Table(raw)
	if !ok {
		log.WithComponent("usort").Warn().
			Str("path", pyPath).
			Msg("tool.usort is not a table, ignoring")
		return cfg, nil
	}

	known := map[string]bool{}
	if raw, has := table["categories"]; has {
		known["categories"] = true
		values, ok := pyproject.Strings(raw)
		if !ok || len(values) == 0 {
			return Config{}, fmt.Errorf("%s: categories must be a list of strings", pyPath)
		}
		cfg.Categories = values
	}
	if raw, has := table["default_category"]; has {
		known["default_category"] = true
		value, ok := raw.(string)
		if !ok {
			return Config{}, fmt.Errorf("%s: default_category must be a string", pyPath)
		}
		cfg.DefaultCategory = value
	}
	if raw, has := table["side_effects"]; has {
		known["side_effects"] = true
		values, ok := pyproject.Strings(raw)
		if !ok {
			return Config{}, fmt.Errorf("%s: side_effects must be a list of strings", pyPath)
		}
		cfg.SideEffects = values
	}
	if raw, has := table["known"]; has {
		known["known"] = true
		knownTable, ok := pyproject.Table(raw)
		if !ok {
			return Config{}, fmt.Errorf("%s: known must be a table of category lists", pyPath)
		}
		cfg.Known = map[string]string{}
		for category, rawModules := range knownTable {
			modules, ok := pyproject.Strings(rawModules)
			if !ok {
				return Config{}, fmt.Errorf("%s: known.%s must be a list of strings", pyPath, category)
			}
			for _, module := range modules {
				cfg.Known[module] = category
			}
		}
	}

	var unknown []string
	for key := range table {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		log.WithComponent("usort").Warn().
			Str("path", pyPath).
			Strs("keys", unknown).
			Msg("unknown configuration values ignored")
	}

	if err := cfg.validate(pyPath); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate(pyPath string) error {
	ranks := c.categoryRanks()
	if _, ok := ranks[c.DefaultCategory]; !ok {
		return fmt.Errorf("%s: default_category %q is not in categories", pyPath, c.DefaultCategory)
	}
	for module, category := range c.Known {
		if _, ok := ranks[category]; !ok {
			return fmt.Errorf("%s: known module %q names unlisted category %q", pyPath, module, category)
		}
	}
	return nil
}

func (c Config) categoryRanks() map[string]int {
	ranks := make(map[string]int, len(c.Categories))
	for i, name := range c.Categories {
		ranks[name] = i
	}
	return ranks
}

// category assigns a dotted module name to one of the configured
// categories. Relative imports always sort as first party.
func (c Config) category(module string, relDots int) string {
	if relDots > 0 {
		return CategoryFirstParty
	}
	if module == "__future__" {
		return CategoryFuture
	}
	if c.Known != nil {
		probe := module
		for probe != "" {
			if category, ok := c.Known[probe]; ok {
				return category
			}
			idx := strings.LastIndexByte(probe, '.')
			if idx < 0 {
				break
			}
			probe = probe[:idx]
		}
	}
	top := module
	if idx := strings.IndexByte(top, '.'); idx >= 0 {
		top = top[:idx]
	}
	if isStdlib(top) {
		return CategoryStdlib
	}
	return c.DefaultCategory
}

// rank maps a category name to its output position. Names outside the
// configured list sort last.
func (c Config) rank(category string) int {
	for i, name := range c.Categories {
		if name == category {
			return i
		}
	}
	return len(c.Categories)
}

// sideEffect reports whether module matches any side-effect pattern.
// A bare name covers the module and its whole subtree; wildcard
// patterns match the dotted name as written.
func (c Config) sideEffect(module string) bool {
	for _, pattern := range c.SideEffects {
		if module == pattern || strings.HasPrefix(module, pattern+".") {
			return true
		}
		if ok, err := path.Match(pattern, module); err == nil && ok {
			return true
		}
		if root, ok := strings.CutSuffix(pattern, ".*"); ok && module == root {
			return true
		}
	}
	return false
}
