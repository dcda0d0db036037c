package walk

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Run applies fn to every file concurrently and returns one result
// per file, in input order. jobs <= 0 means one worker per CPU. The
// function is responsible for capturing its own failures in T; Run
// only fails on context cancellation.
func Run[T any](ctx context.Context, files []string, jobs int, fn func(path string) T) ([]T, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Indexed slots keep results ordered without a mutex.
	results := make([]T, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func(i int, path string) func() error {
			return func() error {
				// Проверка отмены
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				results[i] = fn(path)
				return nil
			}
		}(i, path))
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
