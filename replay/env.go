package replay

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/nocturneagent"
	"gonum.org/v1/gonum/spatial/r2"
)

// Config configures an Env.
type Config struct {
	// DataPath is the directory of scenario files.
	DataPath string

	// NumScenes limits the scenes that Reset("") cycles
	// through to the first NumScenes files.
	// If 0, all files are used.
	NumScenes int

	// MaxControlled limits the number of controlled
	// vehicles per scene.
	// If 0, every vehicle is controlled.
	MaxControlled int

	EpisodeLength int

	// Dt is the duration of a step, in seconds.
	Dt float64

	// GoalTolerance is the distance within which a vehicle
	// achieves its goal.
	GoalTolerance float64

	// NumPartners is the number of nearby vehicles in each
	// observation.
	NumPartners int

	AccelLow, AccelHigh float64
	NumAccel            int
	SteerLow, SteerHigh float64
	NumSteer            int
}

// DefaultConfig returns the default configuration for a
// data directory.
func DefaultConfig(dataPath string) *Config {
	return &Config{
		DataPath:      dataPath,
		EpisodeLength: 80,
		Dt:            0.1,
		GoalTolerance: 2,
		NumPartners:   5,
		AccelLow:      -6,
		AccelHigh:     6,
		NumAccel:      7,
		SteerLow:      -0.7,
		SteerHigh:     0.7,
		NumSteer:      7,
	}
}

// ObservationSize returns the number of features in each
// observation.
func (c *Config) ObservationSize() int {
	return egoFeatures + partnerFeatures*c.NumPartners
}

const (
	egoFeatures     = 4
	partnerFeatures = 3
)

// Env is a nocturneagent.Env which replays scenario files.
//
// Vehicles under expert control follow their logged
// trajectories.
// Other controlled vehicles follow a kinematic bicycle
// model driven by the actions passed to Step.
// Uncontrolled vehicles always follow their logs.
type Env struct {
	Config Config

	grid     *nocturneagent.Grid
	files    []string
	nextFile int

	scene     string
	scenario  *Scenario
	timestep  int
	vehicles  []*Vehicle
	others    []*Vehicle
	roadEdges [][2]r2.Vec
}

// NewEnv creates an Env and lists its scene files.
func NewEnv(c *Config) (*Env, error) {
	files, err := SceneFiles(c.DataPath)
	if err != nil {
		return nil, err
	}
	if c.NumScenes > 0 && c.NumScenes < len(files) {
		files = files[:c.NumScenes]
	}
	return &Env{
		Config: *c,
		grid: nocturneagent.SpanGrid(c.AccelLow, c.AccelHigh, c.NumAccel,
			c.SteerLow, c.SteerHigh, c.NumSteer),
		files: files,
	}, nil
}

// Files returns the scenes that Reset("") cycles through.
func (e *Env) Files() []string {
	return append([]string{}, e.files...)
}

// Reset loads a scene.
// If scene is "", the next scene file is used, wrapping
// around after the last one.
func (e *Env) Reset(scene string) (map[nocturneagent.AgentID]anyvec.Vector, error) {
	if scene == "" {
		if len(e.files) == 0 {
			return nil, errors.New("reset: no scene files in " + e.Config.DataPath)
		}
		scene = e.files[e.nextFile%len(e.files)]
		e.nextFile++
	}
	scenario, err := LoadScenario(filepath.Join(e.Config.DataPath, scene))
	if err != nil {
		return nil, err
	}
	if err := e.load(scene, scenario); err != nil {
		return nil, err
	}
	res := map[nocturneagent.AgentID]anyvec.Vector{}
	for _, v := range e.vehicles {
		res[v.id] = e.observe(v)
	}
	return res, nil
}

func (e *Env) load(scene string, scenario *Scenario) error {
	e.scene = scene
	e.scenario = scenario
	e.timestep = 0
	e.vehicles = nil
	e.others = nil
	e.roadEdges = nil

	for i := range scenario.Objects {
		obj := &scenario.Objects[i]
		if obj.Type != "vehicle" || !obj.validAt(0) {
			continue
		}
		v := &Vehicle{id: nocturneagent.AgentID(i), obj: obj}
		v.setLogged(0)
		if e.Config.MaxControlled == 0 || len(e.vehicles) < e.Config.MaxControlled {
			e.vehicles = append(e.vehicles, v)
		} else {
			v.expert = true
			e.others = append(e.others, v)
		}
	}
	if len(e.vehicles) == 0 {
		return fmt.Errorf("%w: %s has no valid vehicles", nocturneagent.ErrInvalidScene, scene)
	}

	for _, road := range scenario.Roads {
		if road.Type != "road_edge" {
			continue
		}
		for i := 1; i < len(road.Geometry); i++ {
			e.roadEdges = append(e.roadEdges,
				[2]r2.Vec{road.Geometry[i-1].Vec(), road.Geometry[i].Vec()})
		}
	}
	return nil
}

// Step applies actions to the vehicles which are not
// under expert control.
func (e *Env) Step(actions map[nocturneagent.AgentID]nocturneagent.Action) (res *nocturneagent.StepResult, err error) {
	defer essentials.AddCtxTo("step "+e.scene, &err)
	if e.scenario == nil {
		return nil, errors.New("environment was not reset")
	}

	for _, v := range e.vehicles {
		if v.done {
			continue
		}
		if v.expert {
			v.setLogged(e.timestep + 1)
			continue
		}
		var act nocturneagent.ContinuousAction
		switch a := actions[v.id].(type) {
		case nocturneagent.ContinuousAction:
			act = a
		case nocturneagent.DiscreteAction:
			if int(a) < 0 || int(a) >= e.grid.NumActions() {
				return nil, fmt.Errorf("vehicle %d: action index %d out of range", v.id, a)
			}
			act = e.grid.Action(a)
		case nil:
		default:
			return nil, fmt.Errorf("vehicle %d: unsupported action %T", v.id, a)
		}
		v.integrate(act, e.Config.Dt)
	}
	for _, v := range e.others {
		v.setLogged(e.timestep + 1)
	}
	e.timestep++

	res = &nocturneagent.StepResult{
		Observations: map[nocturneagent.AgentID]anyvec.Vector{},
		Rewards:      map[nocturneagent.AgentID]float64{},
		Done:         map[nocturneagent.AgentID]bool{},
		Info:         map[nocturneagent.AgentID]nocturneagent.TerminalInfo{},
	}
	horizon := e.timestep >= e.Config.EpisodeLength
	var finished []*Vehicle
	for _, v := range e.vehicles {
		if v.done {
			continue
		}
		info := nocturneagent.TerminalInfo{
			GoalAchieved: r2.Norm(r2.Sub(v.pos, v.obj.GoalPosition.Vec())) < e.Config.GoalTolerance,
			OffRoad:      e.offRoad(v),
			Collided:     e.collided(v),
		}
		res.Observations[v.id] = e.observe(v)
		if info.GoalAchieved {
			res.Rewards[v.id] = 1
		} else {
			res.Rewards[v.id] = 0
		}
		done := info.GoalAchieved || info.OffRoad || info.Collided || horizon
		res.Done[v.id] = done
		res.Info[v.id] = info
		if done {
			finished = append(finished, v)
		}
	}
	for _, v := range finished {
		v.done = true
	}
	res.AllDone = horizon || len(e.ControlledVehicles()) == 0
	return res, nil
}

// ControlledVehicles returns the controlled vehicles which
// are not done.
func (e *Env) ControlledVehicles() []nocturneagent.Vehicle {
	var res []nocturneagent.Vehicle
	for _, v := range e.vehicles {
		if !v.done {
			res = append(res, v)
		}
	}
	return res
}

// Scene returns the file name of the current scene.
func (e *Env) Scene() string {
	return e.scene
}

// EpisodeLength returns the configured episode length.
func (e *Env) EpisodeLength() int {
	return e.Config.EpisodeLength
}

// ActionGrid returns the discretization grid.
func (e *Env) ActionGrid() *nocturneagent.Grid {
	return e.grid
}

// Close releases the current scene.
func (e *Env) Close() error {
	e.scenario = nil
	e.vehicles = nil
	e.others = nil
	return nil
}

// ExpertAction infers the logged action of a vehicle at a
// timestep from its logged states at t and t+1.
func (e *Env) ExpertAction(veh nocturneagent.Vehicle, t int) (nocturneagent.ContinuousAction, bool) {
	v, ok := veh.(*Vehicle)
	if !ok || !v.obj.validAt(t) || !v.obj.validAt(t+1) {
		return nocturneagent.ContinuousAction{}, false
	}
	return expertAction(v.obj, t, e.Config.Dt), true
}

func (e *Env) offRoad(v *Vehicle) bool {
	radius := v.obj.Width / 2
	for _, edge := range e.roadEdges {
		if segmentDistance(v.pos, edge[0], edge[1]) < radius {
			return true
		}
	}
	return false
}

func (e *Env) collided(v *Vehicle) bool {
	for _, list := range [][]*Vehicle{e.vehicles, e.others} {
		for _, other := range list {
			if other == v || !other.present() {
				continue
			}
			radii := (v.radius() + other.radius())
			if r2.Norm(r2.Sub(v.pos, other.pos)) < radii {
				return true
			}
		}
	}
	return false
}

// observe builds an ego-centric observation.
func (e *Env) observe(v *Vehicle) anyvec.Vector {
	features := make([]float64, e.Config.ObservationSize())
	toGoal := egoFrame(v, v.obj.GoalPosition.Vec())
	goalDist := r2.Norm(toGoal)
	features[0] = v.speed
	features[1] = goalDist
	if goalDist > 0 {
		features[2] = toGoal.Y / goalDist
		features[3] = toGoal.X / goalDist
	}

	var partners []*Vehicle
	for _, list := range [][]*Vehicle{e.vehicles, e.others} {
		for _, other := range list {
			if other != v && other.present() {
				partners = append(partners, other)
			}
		}
	}
	sort.SliceStable(partners, func(i, j int) bool {
		return r2.Norm2(r2.Sub(partners[i].pos, v.pos)) <
			r2.Norm2(r2.Sub(partners[j].pos, v.pos))
	})
	for i, p := range partners {
		if i >= e.Config.NumPartners {
			break
		}
		rel := egoFrame(v, p.pos)
		idx := egoFeatures + i*partnerFeatures
		features[idx] = rel.X
		features[idx+1] = rel.Y
		features[idx+2] = p.speed
	}
	return nocturneagent.FeatureVector(features)
}

// egoFrame expresses a point relative to a vehicle, with
// the x axis along its heading.
func egoFrame(v *Vehicle, p r2.Vec) r2.Vec {
	d := r2.Sub(p, v.pos)
	cos, sin := math.Cos(v.heading), math.Sin(v.heading)
	return r2.Vec{X: d.X*cos + d.Y*sin, Y: -d.X*sin + d.Y*cos}
}

func segmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l := r2.Norm2(ab)
	if l == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := math.Max(0, math.Min(1, r2.Dot(r2.Sub(p, a), ab)/l))
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}
