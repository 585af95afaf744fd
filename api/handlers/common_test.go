// Common test helpers
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/searchresource/config"
	"github.com/meghashyamc/searchresource/db/kvdb"
	"github.com/meghashyamc/searchresource/db/searchdb"
	"github.com/meghashyamc/searchresource/logger"
	"github.com/meghashyamc/searchresource/services/index"
	"github.com/meghashyamc/searchresource/services/search"
	"github.com/meghashyamc/searchresource/validation"
	"github.com/stretchr/testify/require"
)

const testNoteCount = 42

type testServer struct {
	router  *gin.Engine
	loader  *index.Service
	objects *kvdb.BoltDB
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

// testRecords returns 42 notes, the last two with distinct titles, and three people.
func testRecords() []index.Record {
	records := make([]index.Record, 0, testNoteCount+3)
	for i := 0; i < testNoteCount-2; i++ {
		records = append(records, index.Record{
			Model:  "note",
			ID:     fmt.Sprintf("%02d", i),
			Fields: map[string]any{"title": fmt.Sprintf("Note %02d", i), "body": "shared body text"},
		})
	}
	records = append(records,
		index.Record{Model: "note", ID: "40", Fields: map[string]any{"title": "Grocery list", "body": "shared body text milk"}},
		index.Record{Model: "note", ID: "41", Fields: map[string]any{"title": "Gardening plans", "body": "shared body text tomatoes"}},
		index.Record{Model: "person", ID: "1", Fields: map[string]any{"name": "Grace Hopper"}},
		index.Record{Model: "person", ID: "2", Fields: map[string]any{"name": "Ada Lovelace"}},
		index.Record{Model: "person", ID: "3", Fields: map[string]any{"name": "Alan Turing"}},
	)
	return records
}

func setupTestServer(t *testing.T, assert *require.Assertions) *testServer {

	t.Setenv("ENV", "test")
	storagePath := t.TempDir()
	t.Setenv("STORAGE_PATH", storagePath)
	t.Setenv("KVDB_PATH", filepath.Join(storagePath, "objects.db"))

	cfg, err := config.Load()
	assert.NoError(err, "could not load config")

	testLogger := newTestLogger()

	searchDB, err := searchdb.New(testLogger, cfg.GetStoragePath(), cfg.GetIndexPath())
	assert.NoError(err, "could not create search database")

	kvDB, err := kvdb.New(testLogger, cfg.GetKVDBPath())
	assert.NoError(err, "could not create kv database")

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	resources, err := cfg.GetResources()
	assert.NoError(err, "could not read resources")

	loader := index.New(testLogger, searchDB, kvDB, validator)
	_, err = loader.Load(testRecords())
	assert.NoError(err, "could not load test records")

	gin.SetMode(gin.TestMode)
	router := gin.New()

	service := search.New(testLogger, searchDB, kvDB)
	api := router.Group("/api/v1")
	for _, resource := range resources {
		SetupResource(api, testLogger, resource, service, validator)
	}

	t.Cleanup(func() {
		assert.NoError(searchDB.Close(), "could not close search database")
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	return &testServer{router: router, loader: loader, objects: kvDB}
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, queryParams map[string]string) *httptest.ResponseRecorder {

	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		params := url.Values{}
		for key, value := range queryParams {
			params.Set(key, value)
		}
		endpoint = endpoint + "?" + params.Encode()
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint)

	req, err := http.NewRequest(method, endpoint, nil)
	assert.NoError(err)

	router.ServeHTTP(w, req)

	return w
}

func strPtr(s string) *string {
	return &s
}
