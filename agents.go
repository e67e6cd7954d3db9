package nocturneagent

import (
	"sort"

	"github.com/samber/lo"
)

// agentState is the lifecycle of an agent in an episode.
//
// An agent starts alive and terminates exactly once.
type agentState struct {
	terminated bool
	info       TerminalInfo
}

// Alive reports whether the agent is still running.
func (a *agentState) Alive() bool {
	return !a.terminated
}

// Terminate records the agent's final info.
// It returns false and leaves the state untouched if the
// agent had already terminated.
func (a *agentState) Terminate(info TerminalInfo) bool {
	if a.terminated {
		return false
	}
	a.terminated = true
	a.info = info
	return true
}

// An episode tracks every agent which was present at the
// start of an episode.
type episode struct {
	ids    []AgentID
	states map[AgentID]*agentState
}

func newEpisode(ids []AgentID) *episode {
	ids = append([]AgentID{}, ids...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	e := &episode{ids: ids, states: map[AgentID]*agentState{}}
	for _, id := range ids {
		e.states[id] = &agentState{}
	}
	return e
}

func newEpisodeFromObs[T any](obs map[AgentID]T) *episode {
	return newEpisode(lo.Keys(obs))
}

// Alive reports whether an agent is known and running.
func (e *episode) Alive(id AgentID) bool {
	s, ok := e.states[id]
	return ok && s.Alive()
}

// Update applies the done flags of a step, capturing
// terminal info on each agent's first done event.
func (e *episode) Update(res *StepResult) {
	for id, done := range res.Done {
		if !done {
			continue
		}
		if s, ok := e.states[id]; ok {
			s.Terminate(res.Info[id])
		}
	}
}

// AllTerminated reports whether every agent has a
// recorded terminal info.
func (e *episode) AllTerminated() bool {
	return lo.EveryBy(e.ids, func(id AgentID) bool {
		return !e.states[id].Alive()
	})
}

// episodeTotals are terminal outcomes summed over the
// agents of an episode.
type episodeTotals struct {
	GoalAchieved int
	OffRoad      int
	Collisions   int
}

// Totals sums the captured terminal info.
// Agents which never terminated contribute nothing.
func (e *episode) Totals() episodeTotals {
	var t episodeTotals
	for _, id := range e.ids {
		s := e.states[id]
		if s.Alive() {
			continue
		}
		t.GoalAchieved += boolToInt(s.info.GoalAchieved)
		t.OffRoad += boolToInt(s.info.OffRoad)
		t.Collisions += boolToInt(s.info.Collided)
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
