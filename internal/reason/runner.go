package reason

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lxlab/oss-scout/internal/models"
)

const defaultConcurrency = 4

// Runner fans reason generation out over the selected repositories with a
// bounded number of calls in flight. Completed items are funneled into the
// returned channel in completion order, which is what the stream emits.
type Runner struct {
	generator   *Generator
	concurrency int
	logger      *zerolog.Logger
}

func NewRunner(generator *Generator, concurrency int, logger *zerolog.Logger) *Runner {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}

	return &Runner{
		generator:   generator,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run launches one goroutine per repository, gated by a semaphore of the
// configured size, and closes the returned channel once every item has
// either completed or been abandoned due to cancellation.
func (r *Runner) Run(ctx context.Context, repos []models.ScoredRepo, intent models.Intent, rawQuery string) <-chan models.ScoredRepo {
	out := make(chan models.ScoredRepo, len(repos))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for _, repo := range repos {
		wg.Add(1)
		go func(item models.ScoredRepo) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			if ctx.Err() != nil {
				return
			}

			item.Reason = r.generator.Explain(ctx, item, intent, rawQuery)
			out <- item
		}(repo)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
