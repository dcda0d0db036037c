package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cosinequanon/ufmt/internal/driver"
	"github.com/cosinequanon/ufmt/internal/ui"
)

type formatOutcome struct {
	results []driver.Result
	err     error
}

// runFormatWithUI formats files while a bubbletea progress view renders
// the pipeline events. The UI owns stdout until the run finishes, so
// callers print their reports afterwards.
func runFormatWithUI(ctx context.Context, title string, files []string, opts driver.Options) ([]driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan formatOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		results, err := driver.FormatFiles(ctx, files, optsCopy)
		outcomeCh <- formatOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

// runPathsWithUI is FormatPaths with the live view swapped in: same walk
// and format phases, same timings.
func runPathsWithUI(cmd *cobra.Command, paths []string, opts driver.Options, title string) ([]driver.Result, error) {
	endWalk := opts.Timer.Begin("walk")
	files, err := driver.CollectPaths(paths)
	endWalk(fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return nil, err
	}

	endFormat := opts.Timer.Begin("format")
	results, err := runFormatWithUI(cmd.Context(), title, files, opts)
	endFormat("")
	return results, err
}
