package matchfile

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// ErrUnknownScenario is returned for a scenario ID that isn't embedded.
var ErrUnknownScenario = errors.New("unknown scenario")

//go:embed scenarios/*.yaml
var scenarioFS embed.FS

// Scenarios returns every embedded demo match, ordered by ID.
func Scenarios() ([]*File, error) {
	entries, err := fs.ReadDir(scenarioFS, "scenarios")
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	files := make([]*File, 0, len(entries))
	for _, e := range entries {
		data, err := scenarioFS.ReadFile(path.Join("scenarios", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario %s: %w", e.Name(), err)
		}
		f, err := Decode(data, "yaml")
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", e.Name(), err)
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}

// Scenario returns the embedded demo match with the given ID.
func Scenario(id string) (*File, error) {
	all, err := Scenarios()
	if err != nil {
		return nil, err
	}
	for _, f := range all {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, id)
}
