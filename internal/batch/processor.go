package batch

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lxlab/oss-scout/internal/models"
)

// Searcher is the pipeline surface the processor needs.
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (models.SearchResponse, error)
}

// Result is one processed record, ready for the output writer.
type Result struct {
	LineNumber int                    `json:"line"`
	Query      string                 `json:"query"`
	Response   *models.SearchResponse `json:"response,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

type Processor struct {
	searcher Searcher
	workers  int
	logger   *zerolog.Logger
}

func NewProcessor(searcher Searcher, workers int, logger *zerolog.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}

	return &Processor{
		searcher: searcher,
		workers:  workers,
		logger:   logger,
	}
}

// Process runs every valid record through the pipeline with a bounded
// worker pool. Records that failed to parse pass through as error results.
func (p *Processor) Process(ctx context.Context, records []InputRecord) <-chan Result {
	jobs := make(chan InputRecord)
	out := make(chan Result, len(records))

	var wg sync.WaitGroup
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range jobs {
				out <- p.process(ctx, record)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, record := range records {
			select {
			case jobs <- record:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (p *Processor) process(ctx context.Context, record InputRecord) Result {
	result := Result{
		LineNumber: record.LineNumber,
		Query:      record.Request.Query,
	}

	if record.Error != nil {
		result.Error = record.Error.Error()
		return result
	}

	response, err := p.searcher.Search(ctx, record.Request)
	if err != nil {
		p.logger.Error().Int("line", record.LineNumber).Err(err).Msg("Search failed")
		result.Error = err.Error()
		return result
	}

	result.Response = &response
	return result
}
