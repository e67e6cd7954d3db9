package nocturneagent

import (
	"fmt"
	"sort"

	"github.com/unixpickle/anyvec"
	"gonum.org/v1/gonum/spatial/r2"
)

// fakeScript describes one scripted scene.
type fakeScript struct {
	// Paths gives every vehicle's position at each
	// timestep, holding the last position afterwards.
	Paths map[AgentID][]r2.Vec

	// DoneAt is the timestep after which a vehicle
	// finishes, with Info as its terminal info.
	DoneAt map[AgentID]int
	Info   map[AgentID]TerminalInfo

	// AllDoneAt ends the episode at a timestep.
	// If 0, the episode ends once every vehicle is done.
	AllDoneAt int

	// RepeatDone causes finished vehicles to keep
	// reporting done with garbage info.
	RepeatDone bool
}

type fakeVehicle struct {
	id     AgentID
	pos    r2.Vec
	expert bool
	done   bool
}

func (f *fakeVehicle) ID() AgentID { return f.id }
func (f *fakeVehicle) Position() r2.Vec { return f.pos }
func (f *fakeVehicle) Speed() float64 { return 1 }
func (f *fakeVehicle) ExpertControl() bool { return f.expert }
func (f *fakeVehicle) SetExpertControl(e bool) { f.expert = e }

// fakeEnv is a scripted Env which records the actions it
// receives.
type fakeEnv struct {
	Scripts map[string]*fakeScript
	Order   []string
	Length  int
	Grid    *Grid

	NumResets int

	// Actions and Experts record, for every step, the
	// actions passed and which vehicles were under expert
	// control.
	Actions []map[AgentID]Action
	Experts []map[AgentID]bool

	next     int
	scene    string
	script   *fakeScript
	t        int
	vehicles []*fakeVehicle
}

func (f *fakeEnv) Close() error {
	return nil
}

func (f *fakeEnv) Reset(scene string) (map[AgentID]anyvec.Vector, error) {
	f.NumResets++
	if scene == "" {
		scene = f.Order[f.next%len(f.Order)]
		f.next++
	}
	script, ok := f.Scripts[scene]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidScene, scene)
	}
	f.scene = scene
	f.script = script
	f.t = 0
	f.vehicles = nil
	for id, path := range script.Paths {
		f.vehicles = append(f.vehicles, &fakeVehicle{id: id, pos: path[0]})
	}
	sort.Slice(f.vehicles, func(i, j int) bool {
		return f.vehicles[i].id < f.vehicles[j].id
	})
	obs := map[AgentID]anyvec.Vector{}
	for _, v := range f.vehicles {
		obs[v.id] = f.observe(v)
	}
	return obs, nil
}

func (f *fakeEnv) Step(actions map[AgentID]Action) (*StepResult, error) {
	f.Actions = append(f.Actions, actions)
	experts := map[AgentID]bool{}
	for _, v := range f.vehicles {
		experts[v.id] = v.expert
	}
	f.Experts = append(f.Experts, experts)

	f.t++
	res := &StepResult{
		Observations: map[AgentID]anyvec.Vector{},
		Rewards:      map[AgentID]float64{},
		Done:         map[AgentID]bool{},
		Info:         map[AgentID]TerminalInfo{},
	}
	for _, v := range f.vehicles {
		if v.done {
			if f.script.RepeatDone {
				res.Done[v.id] = true
				res.Info[v.id] = TerminalInfo{OffRoad: true, Collided: true}
			}
			continue
		}
		path := f.script.Paths[v.id]
		v.pos = path[minInt(f.t, len(path)-1)]
		res.Observations[v.id] = f.observe(v)
		res.Rewards[v.id] = 0
		if doneAt, ok := f.script.DoneAt[v.id]; ok && doneAt == f.t {
			v.done = true
			res.Done[v.id] = true
			res.Info[v.id] = f.script.Info[v.id]
		} else {
			res.Done[v.id] = false
		}
	}
	if f.script.AllDoneAt > 0 {
		res.AllDone = f.t >= f.script.AllDoneAt
	} else {
		res.AllDone = len(f.ControlledVehicles()) == 0
	}
	return res, nil
}

func (f *fakeEnv) ControlledVehicles() []Vehicle {
	var res []Vehicle
	for _, v := range f.vehicles {
		if !v.done {
			res = append(res, v)
		}
	}
	return res
}

func (f *fakeEnv) Scene() string {
	return f.scene
}

func (f *fakeEnv) EpisodeLength() int {
	return f.Length
}

func (f *fakeEnv) ActionGrid() *Grid {
	return f.Grid
}

func (f *fakeEnv) observe(v *fakeVehicle) anyvec.Vector {
	return FeatureVector([]float64{float64(v.id), float64(f.t)})
}

// fakeOracle returns a fixed action per vehicle and
// records whether each query happened under expert
// control.
type fakeOracle struct {
	Actions map[AgentID]ContinuousAction

	Queries       int
	ExpertQueries int
}

func (f *fakeOracle) ExpertAction(v Vehicle, timestep int) (ContinuousAction, bool) {
	f.Queries++
	if v.ExpertControl() {
		f.ExpertQueries++
	}
	act, ok := f.Actions[v.ID()]
	return act, ok
}

// fakePolicy returns the first observation feature as the
// action.
type fakePolicy struct {
	Calls int
}

func (f *fakePolicy) Predict(obs anyvec.Vector, deterministic bool) (DiscreteAction, error) {
	f.Calls++
	return DiscreteAction(vecToFloats(obs)[0]), nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// straightPath moves from start by step for n timesteps.
func straightPath(start, step r2.Vec, n int) []r2.Vec {
	res := make([]r2.Vec, n)
	for i := range res {
		res[i] = r2.Add(start, r2.Scale(float64(i), step))
	}
	return res
}
