package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/lxlab/oss-scout/internal/models"
)

// ErrSearchFailed is returned by Search when the underlying stream
// terminates with an error event.
var ErrSearchFailed = errors.New("search failed")

// Search runs the pipeline to completion and returns the buffered result,
// ordered by the requested sort. It is the non-streaming counterpart of
// Run, used by the JSON endpoint, the batch runner, and the MCP tool.
func (c *StreamCoordinator) Search(ctx context.Context, req models.SearchRequest) (models.SearchResponse, error) {
	if err := req.Normalize(); err != nil {
		return models.SearchResponse{}, err
	}

	resp := models.SearchResponse{Query: req.Query}

	for ev := range c.Run(ctx, req) {
		switch ev.Type {
		case models.EventIntent:
			resp.IntentKeywords = ev.Keywords
		case models.EventItem:
			resp.Results = append(resp.Results, *ev.Item)
		case models.EventError:
			return models.SearchResponse{}, fmt.Errorf("%w: %s", ErrSearchFailed, ev.Message)
		case models.EventDone:
		}
	}

	if err := ctx.Err(); err != nil {
		return models.SearchResponse{}, err
	}

	// Items arrive in reason-completion order; the buffered form presents
	// rank order.
	sort.SliceStable(resp.Results, func(i, j int) bool {
		return ranksBefore(req.Sort, resp.Results[i], resp.Results[j])
	})

	return resp, nil
}
