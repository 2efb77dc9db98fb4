package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/tsfdb/tsfdb-go/pkg/ingest"
	"github.com/tsfdb/tsfdb-go/pkg/query"
	"github.com/tsfdb/tsfdb-go/pkg/server"
	"github.com/tsfdb/tsfdb-go/pkg/server/monitor"
	"github.com/tsfdb/tsfdb-go/pkg/tsdb"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	store, err := tsdb.Open(tsdb.StoreConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	facade := tsdb.NewFacade(store, tsdb.Modes{Minute: 1, Hour: 1, Day: 1})
	ingestHandler := ingest.NewHandler(facade)
	queryHandler := query.NewHandler(facade)
	storageMonitor := monitor.NewStorageMonitor(t.TempDir(), 1<<30)
	gcMonitor := &monitor.GCMonitor{}

	router := mux.NewRouter()
	server.SetupRoutes(router, ingestHandler, queryHandler, storageMonitor, gcMonitor, "8080")
	return router
}

func TestE2E_IngestAndFindResources(t *testing.T) {
	router := newTestRouter(t)

	body := "cpu,machine_id=server1 value=75.5 1700000000000000000\n"
	req := httptest.NewRequest(http.MethodPost, "/v1/write", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/resources?pattern=server1", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "server1")
}

func TestE2E_Health(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	// GC never ran in this test, so health reports degraded, not an error.
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Contains(t, rr.Body.String(), "degraded")
}
