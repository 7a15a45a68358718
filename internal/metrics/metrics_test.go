package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetricScopeWithoutBackend(t *testing.T) {
	scope, closer, handler := InitMetricScope(Config{Prefix: "test"})
	defer closer.Close()
	require.NotNil(t, scope)
	assert.Nil(t, handler)
	scope.Counter("boot").Inc(1)
}

func TestInitMetricScopePrometheus(t *testing.T) {
	scope, closer, handler := InitMetricScope(Config{
		Prefix:         "cloud-sched-test",
		ReportInterval: 10 * time.Millisecond,
		Prometheus:     true,
	})
	defer closer.Close()
	require.NotNil(t, handler)

	scope.Counter("boot").Inc(1)

	assert.Eventually(t, func() bool {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		return w.Code == http.StatusOK && strings.Contains(w.Body.String(), "cloud_sched_test_boot")
	}, 5*time.Second, 20*time.Millisecond)
}
