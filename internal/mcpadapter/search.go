package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lxlab/oss-scout/internal/models"
	"github.com/lxlab/oss-scout/internal/pipeline"
)

// SearchInput is the MCP tool input schema (matches HTTP API field names).
type SearchInput struct {
	Query            string `json:"query" jsonschema:"natural language description of the wanted repository"`
	Limit            int    `json:"limit,omitempty" jsonschema:"maximum number of recommendations (1-50, default: 10)"`
	Sort             string `json:"sort,omitempty" jsonschema:"result order: best, stars or updated (default: best)"`
	MinStars         int    `json:"min_stars,omitempty" jsonschema:"minimum star count"`
	PushedWithinDays int    `json:"pushed_within_days,omitempty" jsonschema:"only repositories pushed within this many days"`
	UseCache         *bool  `json:"use_cache,omitempty" jsonschema:"serve from cache when available (default: true)"`
}

// NewSearchHandler returns a tool handler backed by the given coordinator.
// Pass the returned function to mcp.AddTool.
func NewSearchHandler(coordinator *pipeline.StreamCoordinator) func(context.Context, *mcp.CallToolRequest, SearchInput) (*mcp.CallToolResult, models.SearchResponse, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, models.SearchResponse, error) {
		return SearchRepositories(ctx, coordinator, req, input)
	}
}

// SearchRepositories runs the recommendation pipeline and returns the
// buffered result.
func SearchRepositories(
	ctx context.Context,
	coordinator *pipeline.StreamCoordinator,
	req *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, models.SearchResponse, error) {
	searchReq := models.DefaultRequest(input.Query)
	searchReq.Sort = models.Sort(input.Sort)

	if input.Limit > 0 {
		searchReq.Limit = input.Limit
	}
	if input.MinStars > 0 {
		searchReq.Filters.MinStars = input.MinStars
	}
	if input.PushedWithinDays > 0 {
		searchReq.Filters.PushedWithinDays = input.PushedWithinDays
	}
	if input.UseCache != nil {
		searchReq.UseCache = *input.UseCache
	}

	result, err := coordinator.Search(ctx, searchReq)
	if err != nil {
		return nil, models.SearchResponse{}, err
	}

	return nil, result, nil
}
