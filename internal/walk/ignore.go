package walk

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// rule is one compiled gitignore-style pattern.
type rule struct {
	pattern  string
	negate   bool
	dirOnly  bool
	anchored bool
}

// Matcher evaluates gitignore-style exclude patterns against paths
// relative to a project root. Rules apply in order; the last matching
// rule wins, and a leading ! re-includes a path.
type Matcher struct {
	rules []rule
}

// NewMatcher compiles patterns. Blank lines and # comments are
// skipped, mirroring .gitignore files.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{}
	for _, raw := range patterns {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var r rule
		if strings.HasPrefix(line, "!") {
			r.negate = true
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			r.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		if strings.HasPrefix(line, "/") {
			r.anchored = true
			line = line[1:]
		} else if strings.Contains(line, "/") {
			// A separator anywhere anchors the pattern to the root.
			r.anchored = true
		}
		if line == "" {
			continue
		}
		r.pattern = line
		m.rules = append(m.rules, r)
	}
	return m
}

// Match reports whether rel, a slash-separated path relative to the
// root, is excluded. A rule matching any parent directory excludes
// everything beneath it; as with .gitignore, paths under an excluded
// directory cannot be re-included.
func (m *Matcher) Match(rel string, isDir bool) bool {
	excluded := false
	for _, r := range m.rules {
		hit := false
		if !r.dirOnly || isDir {
			hit = r.matches(rel)
		}
		if !hit {
			hit = r.matchesParent(rel)
		}
		if hit {
			excluded = !r.negate
		}
	}
	return excluded
}

func (r rule) matchesParent(rel string) bool {
	dir := path.Dir(rel)
	for dir != "." && dir != "/" && dir != "" {
		if r.matches(dir) {
			return true
		}
		dir = path.Dir(dir)
	}
	return false
}

func (r rule) matches(rel string) bool {
	if r.anchored {
		ok, err := doublestar.Match(r.pattern, rel)
		return err == nil && ok
	}
	if ok, err := doublestar.Match(r.pattern, path.Base(rel)); err == nil && ok {
		return true
	}
	ok, err := doublestar.Match("**/"+r.pattern, rel)
	return err == nil && ok
}
