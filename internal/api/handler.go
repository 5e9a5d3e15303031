package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"github.com/lxlab/oss-scout/internal/api/middleware"
	"github.com/lxlab/oss-scout/internal/models"
	"github.com/lxlab/oss-scout/internal/pipeline"
)

// Pipeline is the coordinator surface the handlers need.
type Pipeline interface {
	Run(ctx context.Context, req models.SearchRequest) <-chan models.Event
	Search(ctx context.Context, req models.SearchRequest) (models.SearchResponse, error)
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type Handler struct {
	pipeline Pipeline
	logger   *zerolog.Logger
}

func NewHandler(p Pipeline, logger *zerolog.Logger) *Handler {
	return &Handler{
		pipeline: p,
		logger:   logger,
	}
}

// SearchBody is the JSON request for POST /api/v1/search. Optional fields
// are pointers so an omitted field keeps its default rather than zeroing it.
type SearchBody struct {
	Query              string `json:"query"`
	PerPage            *int   `json:"per_page,omitempty"`
	Limit              *int   `json:"limit,omitempty"`
	Sort               string `json:"sort,omitempty"`
	UseCache           *bool  `json:"use_cache,omitempty"`
	MinStars           *int   `json:"min_stars,omitempty"`
	PushedWithinDays   *int   `json:"pushed_within_days,omitempty"`
	IncludeName        *bool  `json:"include_name,omitempty"`
	IncludeDescription *bool  `json:"include_description,omitempty"`
	IncludeReadme      *bool  `json:"include_readme,omitempty"`
	IncludeTopics      *bool  `json:"include_topics,omitempty"`
}

func (b SearchBody) toRequest() models.SearchRequest {
	req := models.DefaultRequest(b.Query)
	req.Sort = models.Sort(b.Sort)

	if b.PerPage != nil {
		req.PerPage = *b.PerPage
	}
	if b.Limit != nil {
		req.Limit = *b.Limit
	}
	if b.UseCache != nil {
		req.UseCache = *b.UseCache
	}
	if b.MinStars != nil {
		req.Filters.MinStars = *b.MinStars
	}
	if b.PushedWithinDays != nil {
		req.Filters.PushedWithinDays = *b.PushedWithinDays
	}
	if b.IncludeName != nil {
		req.Filters.IncludeName = *b.IncludeName
	}
	if b.IncludeDescription != nil {
		req.Filters.IncludeDescription = *b.IncludeDescription
	}
	if b.IncludeReadme != nil {
		req.Filters.IncludeReadme = *b.IncludeReadme
	}
	if b.IncludeTopics != nil {
		req.Filters.IncludeTopics = *b.IncludeTopics
	}

	return req
}

// POST /api/v1/search
// Body: SearchBody
// Returns: models.SearchResponse
func (h *Handler) Search(req *restful.Request, resp *restful.Response) {
	var body SearchBody
	if err := req.ReadEntity(&body); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	searchReq := body.toRequest()

	h.logger.Info().
		Str("query", searchReq.Query).
		Int("limit", searchReq.Limit).
		Str("sort", string(searchReq.Sort)).
		Msg("Start search")

	ctx := req.Request.Context()

	result, err := h.pipeline.Search(ctx, searchReq)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidRequest):
			middleware.HandleError(resp, err, http.StatusBadRequest)
		case errors.Is(err, pipeline.ErrSearchFailed):
			middleware.HandleError(resp, err, http.StatusBadGateway)
		default:
			h.logger.Error().Err(err).Msg("Search failed")
			middleware.HandleError(resp, err, http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info().
		Str("query", result.Query).
		Int("results", len(result.Results)).
		Msg("Search complete")

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// GET /api/v1/search/stream
// Emits the pipeline run as server-sent events.
func (h *Handler) SearchStream(req *restful.Request, resp *restful.Response) {
	searchReq := requestFromParams(req)

	h.logger.Info().
		Str("query", searchReq.Query).
		Int("limit", searchReq.Limit).
		Msg("Start search stream")

	ctx := req.Request.Context()

	resp.AddHeader("Content-Type", "text/event-stream")
	resp.AddHeader("Cache-Control", "no-cache")
	resp.AddHeader("Connection", "keep-alive")
	resp.AddHeader("X-Accel-Buffering", "no")

	writer := resp.ResponseWriter
	flusher, ok := writer.(http.Flusher)
	if !ok {
		middleware.HandleError(resp, fmt.Errorf("streaming not supported"), http.StatusInternalServerError)
		return
	}

	for ev := range h.pipeline.Run(ctx, searchReq) {
		frame, err := toSSE(ev).Format()
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to format event")
			continue
		}

		fmt.Fprint(writer, frame)
		flusher.Flush()
	}
}

// Health handler GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}

func requestFromParams(req *restful.Request) models.SearchRequest {
	searchReq := models.DefaultRequest(req.QueryParameter("q"))
	searchReq.Sort = models.Sort(req.QueryParameter("sort"))

	if v, err := strconv.Atoi(req.QueryParameter("per_page")); err == nil {
		searchReq.PerPage = v
	}
	if v, err := strconv.Atoi(req.QueryParameter("limit")); err == nil {
		searchReq.Limit = v
	}
	if v, err := strconv.Atoi(req.QueryParameter("min_stars")); err == nil {
		searchReq.Filters.MinStars = v
	}
	if v, err := strconv.Atoi(req.QueryParameter("pushed_within_days")); err == nil {
		searchReq.Filters.PushedWithinDays = v
	}
	if v, err := strconv.ParseBool(req.QueryParameter("use_cache")); err == nil {
		searchReq.UseCache = v
	}
	if v, err := strconv.ParseBool(req.QueryParameter("include_name")); err == nil {
		searchReq.Filters.IncludeName = v
	}
	if v, err := strconv.ParseBool(req.QueryParameter("include_description")); err == nil {
		searchReq.Filters.IncludeDescription = v
	}
	if v, err := strconv.ParseBool(req.QueryParameter("include_readme")); err == nil {
		searchReq.Filters.IncludeReadme = v
	}
	if v, err := strconv.ParseBool(req.QueryParameter("include_topics")); err == nil {
		searchReq.Filters.IncludeTopics = v
	}

	return searchReq
}
