// Package replay implements a lightweight log-replay
// driving environment on top of Nocturne-style scenario
// files.
package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/nocturneagent"
	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2D point in a scenario file.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec converts the point to an r2.Vec.
func (p Point) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Object is a logged road user.
type Object struct {
	Type         string    `json:"type"`
	Width        float64   `json:"width"`
	Length       float64   `json:"length"`
	Position     []Point   `json:"position"`
	Heading      []float64 `json:"heading"`
	Velocity     []Point   `json:"velocity"`
	Valid        []bool    `json:"valid"`
	GoalPosition Point     `json:"goalPosition"`
}

// validAt reports whether the object is logged at t.
func (o *Object) validAt(t int) bool {
	return t >= 0 && t < len(o.Valid) && t < len(o.Position) &&
		t < len(o.Heading) && t < len(o.Velocity) && o.Valid[t]
}

// Road is a road feature, like a lane or an edge.
type Road struct {
	Type     string  `json:"type"`
	Geometry []Point `json:"geometry"`
}

// Scenario is a logged traffic scene.
type Scenario struct {
	Name    string   `json:"name"`
	Objects []Object `json:"objects"`
	Roads   []Road   `json:"roads"`
}

// LoadScenario reads a scenario file.
//
// Files that cannot be read or parsed produce an error
// wrapping nocturneagent.ErrInvalidScene.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", nocturneagent.ErrInvalidScene, err)
	}
	var res Scenario
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", nocturneagent.ErrInvalidScene,
			filepath.Base(path), err)
	}
	return &res, nil
}

// SceneFiles lists the scenario files in a directory, in
// sorted order.
//
// Files named "tfrecord*" are listed; if there are none,
// every "*.json" file is listed instead.
func SceneFiles(dir string) (files []string, err error) {
	defer essentials.AddCtxTo("list scene files", &err)
	for _, pattern := range []string{"tfrecord*", "*.json"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			files = append(files, filepath.Base(m))
		}
		if len(files) > 0 {
			break
		}
	}
	sort.Strings(files)
	return files, nil
}
