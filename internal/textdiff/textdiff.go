// Package textdiff renders unified diffs between two versions of a
// source file.
package textdiff

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Context is the number of unchanged lines shown around each hunk.
const Context = 3

// Unified renders a unified diff from original to modified. The label
// names the file in both headers, prefixed a/ and b/ in the usual
// patch convention. Identical inputs produce an empty string.
func Unified(original, modified, label string) (string, error) {
	if original == modified {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(modified),
		FromFile: "a/" + label,
		ToFile:   "b/" + label,
		Context:  Context,
	})
}
