// Package version carries the build identity of the ufmt binary. The
// release pipeline stamps these variables through -ldflags; a plain
// `go build` keeps the development defaults.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.2.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Цвета сегментов: major/minor/patch.
var segmentColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Pretty returns Version with the major, minor and patch segments
// colored for terminal output. A pre-release suffix stays plain.
func Pretty() string {
	base, suffix, pre := strings.Cut(Version, "-")
	parts := strings.SplitN(base, ".", 3)
	for i := range parts {
		if i < len(segmentColors) {
			parts[i] = segmentColors[i].Sprint(parts[i])
		}
	}
	out := strings.Join(parts, ".")
	if pre {
		out += "-" + suffix
	}
	return out
}
