package query

import (
	"net/http"

	"github.com/tsfdb/tsfdb-go/pkg/httpx"
	"github.com/tsfdb/tsfdb-go/pkg/tsdb"
)

// Handler serves the range-fetch endpoint over the core façade.
type Handler struct {
	facade *tsdb.Facade
}

// NewHandler builds a Handler bound to facade.
func NewHandler(facade *tsdb.Facade) *Handler {
	return &Handler{facade: facade}
}

// FetchResponse is the response payload for GET /v1/fetch.
type FetchResponse struct {
	Series tsdb.FetchResult `json:"series"`
}

// HandleFetch handles GET /v1/fetch?path=resource.metric&start=...&stop=...&step=...
// path may use "*" or a regex for the metric component; a regex resource
// component yields an empty series mapping.
func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.RespondErrorString(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		httpx.RespondErrorString(w, http.StatusBadRequest, "missing required query param: path")
		return
	}

	result, cerr := h.facade.Fetch(r.Context(), path, q.Get("start"), q.Get("stop"), q.Get("step"))
	if cerr != nil {
		httpx.RespondErrorString(w, cerr.Code, cerr.Description)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, FetchResponse{Series: result})
}

// FindResourcesResponse is the response payload for GET /v1/resources.
type FindResourcesResponse struct {
	Resources []string `json:"resources"`
}

// HandleFindResources handles GET /v1/resources?pattern=..., listing
// resources whose identifier matches pattern.
func (h *Handler) HandleFindResources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.RespondErrorString(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = ".*"
	}

	resources, cerr := h.facade.Discovery.FindResources(pattern)
	if cerr != nil {
		httpx.RespondErrorString(w, cerr.Code, cerr.Description)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, FindResourcesResponse{Resources: resources})
}

// FindMetricsResponse is the response payload for GET /v1/metrics.
type FindMetricsResponse struct {
	Metrics map[string]tsdb.MetricDescriptor `json:"metrics"`
}

// HandleFindMetrics handles GET /v1/metrics?resource=..., listing the
// metrics registered for a given resource.
func (h *Handler) HandleFindMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.RespondErrorString(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resource := r.URL.Query().Get("resource")
	if resource == "" {
		httpx.RespondErrorString(w, http.StatusBadRequest, "missing required query param: resource")
		return
	}

	metrics, cerr := h.facade.Discovery.FindMetrics(resource)
	if cerr != nil {
		httpx.RespondErrorString(w, cerr.Code, cerr.Description)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, FindMetricsResponse{Metrics: metrics})
}
