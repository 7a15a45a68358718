package scheduler

import (
	"bufio"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReporterAppendsLines(t *testing.T) {
	dir, err := ioutil.TempDir("", "reports")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "runs.jsonl")

	rep := NewFileReporter(path)
	rep.Report(&Report{RunID: "a", Tasks: 3, WorkerExecMs: map[string]float64{"w": 1}})
	rep.Report(&Report{RunID: "b", Tasks: 3})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r Report
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		ids = append(ids, r.RunID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}
