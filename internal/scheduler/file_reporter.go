package scheduler

import (
	"encoding/json"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
)

// FileReporter appends every report as one JSON line to a file.
type FileReporter struct {
	mu   sync.Mutex
	path string
}

func NewFileReporter(path string) *FileReporter {
	return &FileReporter{path: path}
}

func (f *FileReporter) Report(r *Report) {
	if err := f.write(r); err != nil {
		log.WithError(err).WithField("path", f.path).Error("cannot write run report")
	}
}

func (f *FileReporter) write(r *Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	line, err := json.Marshal(r)
	if err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
