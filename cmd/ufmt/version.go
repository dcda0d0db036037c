package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cosinequanon/ufmt/internal/version"
)

const versionTagline = "imports sorted, style settled"

var (
	versionFormat      string
	versionShowHash    bool
	versionShowMessage bool
	versionShowDate    bool
	versionShowFull    bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShowHash, "hash", false, "include git commit hash")
	versionCmd.Flags().BoolVar(&versionShowMessage, "message", false, "include git commit message")
	versionCmd.Flags().BoolVar(&versionShowDate, "date", false, "include build timestamp")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

// buildDetail is one optional line of build metadata.
type buildDetail struct {
	label string
	key   string
	value string
	show  bool
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show ufmt build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		details := buildDetails()
		switch strings.ToLower(versionFormat) {
		case "pretty":
			renderVersionPretty(cmd.OutOrStdout(), details)
			return nil
		case "json":
			return renderVersionJSON(cmd.OutOrStdout(), details)
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}

func buildDetails() []buildDetail {
	full := versionShowFull
	return []buildDetail{
		{label: "commit:", key: "git_commit", value: strings.TrimSpace(version.GitCommit), show: versionShowHash || full},
		{label: "message:", key: "git_message", value: strings.TrimSpace(version.GitMessage), show: versionShowMessage || full},
		{label: "built:", key: "build_date", value: strings.TrimSpace(version.BuildDate), show: versionShowDate || full},
	}
}

func toolVersion() string {
	if v := strings.TrimSpace(version.Version); v != "" {
		return v
	}
	return "dev"
}

// displayVersion is the colored form for terminals; JSON output sticks
// with the plain toolVersion.
func displayVersion() string {
	if strings.TrimSpace(version.Version) == "" {
		return "dev"
	}
	return version.Pretty()
}

func renderVersionPretty(out io.Writer, details []buildDetail) {
	fmt.Fprintf(out, "ufmt %s - %s\n", displayVersion(), versionTagline)
	shown := false
	for _, d := range details {
		if !d.show {
			continue
		}
		shown = true
		fmt.Fprintf(out, "%-8s %s\n", d.label, valueOrUnknown(d.value))
	}
	if !shown {
		fmt.Fprintln(out, "set --hash, --message, --date, or --full for more build trivia")
	}
}

func renderVersionJSON(out io.Writer, details []buildDetail) error {
	payload := map[string]string{
		"tool":    "ufmt",
		"version": toolVersion(),
		"tagline": versionTagline,
	}
	for _, d := range details {
		if d.show {
			payload[d.key] = valueOrUnknown(d.value)
		}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
