package transport

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudsched/internal/cloud"
)

func TestDispatchParsesTiming(t *testing.T) {
	var got ExecuteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, ExecutePath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := ioutil.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"completed","task":"heavy","result":{"summary":"x","start_time":1000,"finish_time":1250,"execution_time":250}}`))
	}))
	defer srv.Close()

	out, err := NewClient().Dispatch(context.Background(), srv.URL+"/", cloud.Heavy)
	require.NoError(t, err)
	assert.Equal(t, cloud.Heavy, got.Task)
	assert.Equal(t, int64(1000), out.StartTime)
	assert.Equal(t, int64(1250), out.FinishTime)
	assert.Equal(t, int64(250), out.ExecutionTime)
	assert.Contains(t, string(out.Raw), `"summary":"x"`)
}

func TestDispatchNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"unknown task type"}`))
	}))
	defer srv.Close()

	_, err := NewClient().Dispatch(context.Background(), srv.URL, "unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "unknown task type")
}

func TestDispatchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewClient().Dispatch(context.Background(), srv.URL, cloud.Light)
	assert.Error(t, err)
}

func TestDispatchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewClient().Dispatch(context.Background(), addr, cloud.Light)
	assert.Error(t, err)
}

func TestDispatchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewClient(WithTimeout(50*time.Millisecond)).Dispatch(context.Background(), srv.URL, cloud.Light)
	assert.Error(t, err)
	assert.True(t, time.Since(start) < 5*time.Second)
}
