package nocturneagent

import (
	"errors"
	"sort"

	"github.com/samber/lo"
	"github.com/unixpickle/essentials"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultRecordSteps is the number of steps recorded per
// scene by NewAnalyzer.
const DefaultRecordSteps = 90

// A Sample is a vehicle's state at one timestep.
//
// Samples with Valid unset are missing: the agent was
// already done at that timestep (or the episode ended).
type Sample struct {
	Pos   r2.Vec
	Speed float64
	Valid bool
}

// Trajectories stores the recorded states of every agent
// in a scene.
type Trajectories struct {
	Scene string

	// IDs lists the agents in increasing order.
	IDs []AgentID

	// Index maps an agent to its row in Samples.
	Index map[AgentID]int

	// Samples has one row per agent and one column per
	// recorded timestep.
	Samples [][]Sample
}

func newTrajectories(scene string, ids []AgentID, steps int) *Trajectories {
	ids = append([]AgentID{}, ids...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	t := &Trajectories{
		Scene:   scene,
		IDs:     ids,
		Index:   map[AgentID]int{},
		Samples: make([][]Sample, len(ids)),
	}
	for i, id := range ids {
		t.Index[id] = i
		t.Samples[i] = make([]Sample, steps)
	}
	return t
}

// NumSteps returns the number of recorded columns.
func (t *Trajectories) NumSteps() int {
	if len(t.Samples) == 0 {
		return 0
	}
	return len(t.Samples[0])
}

// Path returns the valid positions of an agent, in order.
func (t *Trajectories) Path(id AgentID) []r2.Vec {
	row := t.Samples[t.Index[id]]
	return lo.FilterMap(row, func(s Sample, _ int) (r2.Vec, bool) {
		return s.Pos, s.Valid
	})
}

// RecordScene runs a scene under full expert control and
// records every alive agent at every step.
//
// If the scene cannot be initialized, RecordScene returns
// (nil, nil) so that the caller may skip it.
func RecordScene(env Env, scene string, steps int) (traj *Trajectories, err error) {
	_, err = env.Reset(scene)
	if errors.Is(err, ErrInvalidScene) {
		return nil, nil
	} else if err != nil {
		return nil, essentials.AddCtx("record scene "+scene, err)
	}

	vehicles := env.ControlledVehicles()
	ids := lo.Map(vehicles, func(v Vehicle, _ int) AgentID { return v.ID() })
	traj = newTrajectories(env.Scene(), ids, steps)
	ep := newEpisode(ids)

	for t := 0; t < steps; t++ {
		for _, v := range env.ControlledVehicles() {
			v.SetExpertControl(true)
			row, ok := traj.Index[v.ID()]
			if !ok || !ep.Alive(v.ID()) {
				continue
			}
			traj.Samples[row][t] = Sample{
				Pos:   v.Position(),
				Speed: v.Speed(),
				Valid: true,
			}
		}
		res, err := env.Step(map[AgentID]Action{})
		if err != nil {
			return nil, essentials.AddCtx("record scene "+scene, err)
		}
		ep.Update(res)
		if res.AllDone {
			break
		}
	}
	return traj, nil
}
