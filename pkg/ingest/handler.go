package ingest

import (
	"fmt"
	"io"
	"net/http"

	"github.com/tsfdb/tsfdb-go/pkg/httpx"
	"github.com/tsfdb/tsfdb-go/pkg/tsdb"
)

// Handler serves the line-protocol ingest endpoint over the core façade.
type Handler struct {
	facade *tsdb.Facade
}

// NewHandler builds a Handler bound to facade.
func NewHandler(facade *tsdb.Facade) *Handler {
	return &Handler{facade: facade}
}

// IngestResponse is the response payload for a successful POST /v1/write.
type IngestResponse struct {
	Status string `json:"status"`
}

// HandleIngest handles POST /v1/write: the request body is a
// line-protocol batch, one record per line.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.RespondErrorString(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, fmt.Errorf("reading body: %w", err))
		return
	}

	if cerr := h.facade.Write(r.Context(), string(body)); cerr != nil {
		httpx.RespondErrorString(w, cerr.Code, cerr.Description)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, IngestResponse{Status: "success"})
}
