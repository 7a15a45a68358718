// Package logging configures logrus for the binaries.
package logging

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// AppLogField is the field naming the binary in every log entry.
const AppLogField = "app"

// LevelOverwrite is the default endpoint for overwrite level handler.
const LevelOverwrite = "/logging-level"

const (
	_level    = "level"
	_duration = "duration"
	_usage    = "usage: GET `/logging-level?level=[info|debug]&duration=<duration>`"
)

// LogFieldFormatter adds fixed fields to every entry.
type LogFieldFormatter struct {
	log.Formatter
	Fields log.Fields
}

// Format adds the fixed fields and delegates to the wrapped formatter.
func (f LogFieldFormatter) Format(e *log.Entry) ([]byte, error) {
	data := make(log.Fields, len(e.Data)+len(f.Fields))
	for k, v := range f.Fields {
		data[k] = v
	}
	for k, v := range e.Data {
		data[k] = v
	}
	clone := *e
	clone.Data = data
	return f.Formatter.Format(&clone)
}

// Setup installs a JSON formatter tagged with app and returns the
// initial level.
func Setup(app string, debug bool) log.Level {
	log.SetFormatter(LogFieldFormatter{
		Formatter: &log.JSONFormatter{},
		Fields:    log.Fields{AppLogField: app},
	})
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	return level
}

var _loggingLevel = atomic.NewInt32(int32(log.InfoLevel))

func writeError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintln(w, err.Error())
	fmt.Fprintln(w, _usage)
}

// LevelOverwriteHandler returns a handler that switches the level between
// info and debug for a duration, then restores initialLevel.
func LevelOverwriteHandler(initialLevel log.Level) http.HandlerFunc {
	_loggingLevel.Store(int32(initialLevel))
	log.SetLevel(initialLevel)
	return func(w http.ResponseWriter, r *http.Request) {
		values := r.URL.Query()
		var missing []string
		for _, name := range []string{_level, _duration} {
			if values.Get(name) == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			writeError(w, fmt.Errorf("required params not set: %s", strings.Join(missing, ",")))
			return
		}

		newLevel, err := log.ParseLevel(values.Get(_level))
		if err != nil {
			writeError(w, err)
			return
		}
		if newLevel != log.InfoLevel && newLevel != log.DebugLevel {
			writeError(w, fmt.Errorf("new level %s is not info or debug", newLevel))
			return
		}
		duration, err := time.ParseDuration(values.Get(_duration))
		if err != nil {
			writeError(w, err)
			return
		}

		log.WithFields(log.Fields{
			"new_level": newLevel,
			"duration":  duration,
		}).Info("Setting log level to new level")
		log.SetLevel(newLevel)

		time.AfterFunc(duration, func() {
			level := log.Level(_loggingLevel.Load())
			log.WithField("initial_level", level).Info("Resetting log level after timer")
			log.SetLevel(level)
		})

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Level changed to %s for the next %v.\n", newLevel, duration)
	}
}
