package worker

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/execute", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerExecute(t *testing.T) {
	r := NewRouter(NewExecutor(smallCatalog()))

	w := post(r, `{"task":"ringan"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
		Task   string `json:"task"`
		Result Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "ringan", resp.Task)
	assert.Equal(t, 3, resp.Result.ProductCount)
	assert.NotZero(t, resp.Result.StartTime)
}

func TestHandlerEmptyBodyIsLight(t *testing.T) {
	r := NewRouter(NewExecutor(smallCatalog()))
	req := httptest.NewRequest(http.MethodPost, "/api/execute", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"task":"light"`)
}

func TestHandlerUnknownTask(t *testing.T) {
	r := NewRouter(NewExecutor(smallCatalog()))
	w := post(r, `{"task":"ultra"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"unknown task type"}`, w.Body.String())
}

func TestHandlerCatalogError(t *testing.T) {
	r := NewRouter(NewExecutor(failingCatalog{smallCatalog()}))
	w := post(r, `{"task":"light"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"catalog down"}`, w.Body.String())
}

func TestHandlerStats(t *testing.T) {
	e := NewExecutor(smallCatalog())
	r := NewRouter(e)
	post(r, `{"task":"light"}`)
	post(r, `{"task":"nope"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"executed":1,"failed":0,"in_flight":0}`, w.Body.String())
}
