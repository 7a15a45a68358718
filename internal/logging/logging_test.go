package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLogFieldFormatterFormat(t *testing.T) {
	formatter := LogFieldFormatter{
		Fields:    log.Fields{"app": "cloudsched-scheduler"},
		Formatter: &log.JSONFormatter{},
	}
	b, err := formatter.Format(log.WithField("k1", "v1"))
	assert.NoError(t, err)

	s := string(b)
	assert.Contains(t, s, `"app":"cloudsched-scheduler"`)
	assert.Contains(t, s, `"k1":"v1"`)
}

func TestEntryFieldsWin(t *testing.T) {
	formatter := LogFieldFormatter{
		Fields:    log.Fields{"app": "default"},
		Formatter: &log.JSONFormatter{},
	}
	b, err := formatter.Format(log.WithField("app", "override"))
	assert.NoError(t, err)
	assert.Contains(t, string(b), `"app":"override"`)
}

func TestSetup(t *testing.T) {
	defer log.SetFormatter(&log.TextFormatter{})
	defer log.SetLevel(log.InfoLevel)

	assert.Equal(t, log.DebugLevel, Setup("test", true))
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.Equal(t, log.InfoLevel, Setup("test", false))
}

func TestLevelOverwriteHandler(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)
	h := LevelOverwriteHandler(log.InfoLevel)

	cases := []struct {
		query string
		code  int
	}{
		{"", http.StatusBadRequest},
		{"?level=debug", http.StatusBadRequest},
		{"?level=warn&duration=1s", http.StatusBadRequest},
		{"?level=loud&duration=1s", http.StatusBadRequest},
		{"?level=debug&duration=soon", http.StatusBadRequest},
		{"?level=debug&duration=50ms", http.StatusOK},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, LevelOverwrite+c.query, nil))
		assert.Equal(t, c.code, w.Code, c.query)
	}
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.Eventually(t, func() bool { return log.GetLevel() == log.InfoLevel }, 5*time.Second, 10*time.Millisecond)
}
