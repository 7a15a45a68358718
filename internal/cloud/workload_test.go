package cloud

import (
	"io/ioutil"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightClassMIPS(t *testing.T) {
	assert.Equal(t, 400.0, Light.MIPS())
	assert.Equal(t, 500.0, Medium.MIPS())
	assert.Equal(t, 600.0, Heavy.MIPS())
	assert.Equal(t, 500.0, WeightClass("extreme").MIPS())
	assert.Equal(t, 400.0, WeightClass("ringan").MIPS())
	assert.Equal(t, 600.0, WeightClass("Berat").MIPS())
}

func TestParseWeightClass(t *testing.T) {
	assert.Equal(t, Light, ParseWeightClass("ringan"))
	assert.Equal(t, Medium, ParseWeightClass(" SEDANG "))
	assert.Equal(t, Heavy, ParseWeightClass("heavy"))
	assert.Equal(t, WeightClass("custom"), ParseWeightClass("custom"))
	assert.False(t, WeightClass("custom").Known())
	assert.True(t, WeightClass("berat").Known())
}

func TestParseTasks(t *testing.T) {
	tasks, err := ParseTasks([]byte(`[
		{"id": 1, "name": "Task 1", "weight": "ringan"},
		{"id": 2, "name": "Task 2", "weight": "berat"},
		{"id": 3, "name": "Task 3", "weight": "medium"}
	]`))
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, Light, tasks[0].Weight)
	assert.Equal(t, Heavy, tasks[1].Weight)
	assert.Equal(t, Medium, tasks[2].Weight)
	assert.Equal(t, "Task 2", tasks[1].Name)
	assert.Equal(t, 3, tasks[2].ID)
}

func TestParseTasksErrors(t *testing.T) {
	_, err := ParseTasks([]byte(`[]`))
	assert.Error(t, err)
	_, err = ParseTasks([]byte(`{"id": 1`))
	assert.Error(t, err)
	_, err = ParseTasks([]byte(`[{"id": 1, "name": "x"}]`))
	assert.Error(t, err)
}

func TestLoadTasks(t *testing.T) {
	dir, err := ioutil.TempDir("", "tasks")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "tasks.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("- id: 1\n  name: a\n  weight: light\n"), 0o644))

	tasks, err := LoadTasks(path)
	require.NoError(t, err)
	assert.Equal(t, []Task{{ID: 1, Name: "a", Weight: Light}}, tasks)

	_, err = LoadTasks(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestRandomAssignmentInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := RandomAssignment(200, 6, rng)
	assert.NoError(t, ValidateAssignment(a, 200, 6))
}

func TestClampWorker(t *testing.T) {
	assert.Equal(t, 0, ClampWorker(-3, 4))
	assert.Equal(t, 3, ClampWorker(17, 4))
	assert.Equal(t, 2, ClampWorker(2, 4))
	assert.Equal(t, 3, ClampWorker(math.Inf(1), 4))
	assert.Equal(t, 0, ClampWorker(math.Inf(-1), 4))
	assert.Equal(t, 0, ClampWorker(5, 1))
}

func TestLevyStepAtLeastOne(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		assert.GreaterOrEqual(t, LevyStep(rng), 1.0)
	}
}

func TestCloneAssignment(t *testing.T) {
	a := []int{1, 2, 3}
	c := CloneAssignment(a)
	c[0] = 9
	assert.Equal(t, 1, a[0])
}

func TestLoadShippedTasks(t *testing.T) {
	tasks, err := LoadTasks("../../config/tasks.json")
	require.NoError(t, err)
	require.Len(t, tasks, 12)
	for _, task := range tasks {
		assert.True(t, task.Weight.Known(), task.Name)
	}
}
