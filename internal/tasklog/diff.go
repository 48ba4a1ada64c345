package tasklog

import (
	"fmt"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/kazz187/teamboard/internal/task"
)

// Diff renders a unified diff of the YAML form of two task versions. It
// returns "" when nothing but the timestamps changed.
func Diff(before, after *task.Task) (string, error) {
	a, err := diffable(before)
	if err != nil {
		return "", err
	}
	b, err := diffable(after)
	if err != nil {
		return "", err
	}
	if a == b {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "before",
		ToFile:   "after",
		Context:  1,
	})
}

func diffable(t *task.Task) (string, error) {
	c := *t
	c.CreatedAt, c.UpdatedAt = time.Time{}, time.Time{}
	data, err := yaml.Marshal(&c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task %s: %w", t.ID, err)
	}
	return string(data), nil
}
