package cloud

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// LoadTasks reads the ordered task list from a JSON or YAML file.
// YAML is a superset of JSON, so one decoder serves both formats.
func LoadTasks(path string) ([]Task, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read task source %s", path)
	}
	return ParseTasks(data)
}

func ParseTasks(data []byte) ([]Task, error) {
	var tasks []Task
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		return nil, errors.Wrap(err, "malformed task source")
	}
	if len(tasks) == 0 {
		return nil, errors.New("task source is empty")
	}
	for i := range tasks {
		if tasks[i].Weight == "" {
			return nil, errors.Errorf("task #%d (%q) has no weight", i, tasks[i].Name)
		}
		tasks[i].Weight = ParseWeightClass(string(tasks[i].Weight))
	}
	return tasks, nil
}
