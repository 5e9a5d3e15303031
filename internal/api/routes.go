package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"

	"github.com/lxlab/oss-scout/internal/api/middleware"
	"github.com/lxlab/oss-scout/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/search").
			To(handler.Search).
			Doc("Search repositories").
			Metadata(restfulspec.KeyOpenAPITags, []string{"search"}).
			Reads(SearchBody{}).
			Writes(models.SearchResponse{}).
			Returns(200, "OK", models.SearchResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Upstream Unavailable", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/search/stream").
			To(handler.SearchStream).
			Doc("Stream search results as server-sent events").
			Metadata(restfulspec.KeyOpenAPITags, []string{"search"}).
			Produces("text/event-stream").
			Param(ws.QueryParameter("q", "Natural language query").DataType("string").Required(true)).
			Param(ws.QueryParameter("per_page", "Results fetched per GitHub page (1-50, default: 12)").DataType("integer").Required(false)).
			Param(ws.QueryParameter("limit", "Maximum items emitted (1-50, default: 10)").DataType("integer").Required(false)).
			Param(ws.QueryParameter("sort", "Result order: best, stars or updated (default: best)").DataType("string").Required(false)).
			Param(ws.QueryParameter("min_stars", "Minimum star count (default: 0)").DataType("integer").Required(false)).
			Param(ws.QueryParameter("pushed_within_days", "Only repositories pushed within this many days (default: 1825)").DataType("integer").Required(false)).
			Param(ws.QueryParameter("use_cache", "Serve from cache when available (default: true)").DataType("boolean").Required(false)).
			Param(ws.QueryParameter("include_name", "Match keywords in repository names (default: true)").DataType("boolean").Required(false)).
			Param(ws.QueryParameter("include_description", "Match keywords in descriptions (default: true)").DataType("boolean").Required(false)).
			Param(ws.QueryParameter("include_readme", "Match keywords in readmes (default: true)").DataType("boolean").Required(false)).
			Param(ws.QueryParameter("include_topics", "Match keywords in topics (default: true)").DataType("boolean").Required(false)).
			Returns(200, "OK", nil).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
