package driver

import (
	"context"
	"fmt"
	"sort"

	"github.com/cosinequanon/ufmt/internal/config"
	"github.com/cosinequanon/ufmt/internal/walk"
)

// CollectPaths expands files and directories into the sorted, deduplicated
// set of Python sources a run would touch. Every argument resolves its own
// project configuration, so arguments from different projects honour their
// own excludes. Configuration errors abort collection.
func CollectPaths(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	for _, p := range paths {
		cfg, err := config.Resolve(p)
		if err != nil {
			return nil, err
		}
		matched, err := walk.Files(p, cfg.Excludes)
		if err != nil {
			return nil, err
		}
		for _, file := range matched {
			if _, ok := seen[file]; ok {
				continue
			}
			seen[file] = struct{}{}
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files, nil
}

// FormatFiles formats files concurrently and returns one Result per file,
// in input order. Per-file failures stay in their Result; the returned
// error reports run-level problems such as cancellation.
func FormatFiles(ctx context.Context, files []string, opts Options) ([]Result, error) {
	for _, file := range files {
		emit(opts.Progress, Event{File: file, Stage: StageConfig, Status: StatusQueued})
	}
	return walk.Run(ctx, files, opts.Jobs, func(path string) Result {
		return FormatFile(path, opts)
	})
}

// FormatPaths collects Python files under the given paths and formats
// them. This is the whole pipeline behind the format, check, and diff
// commands.
func FormatPaths(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	endWalk := opts.Timer.Begin("walk")
	files, err := CollectPaths(paths)
	endWalk(fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return nil, err
	}

	endFormat := opts.Timer.Begin("format")
	results, err := FormatFiles(ctx, files, opts)
	endFormat("")
	return results, err
}
