package nocturneagent

import (
	"errors"
	"fmt"
	"log"

	"github.com/samber/lo"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

var (
	ErrMissingPolicy = errors.New("policy mode requires a policy")
	ErrMissingOracle = errors.New("expert action modes require an expert oracle")
)

// A SceneNotFoundError is returned when scene metadata was
// supplied but lacks the current scene.
type SceneNotFoundError struct {
	Scene string
}

func (s *SceneNotFoundError) Error() string {
	return "scene " + s.Scene + " not found in scene metadata"
}

// SceneMetadata is externally known information about a
// scene, used to enrich SceneSummaries.
type SceneMetadata struct {
	NumAgents         int
	IntersectingPaths int
}

// A SceneSummary aggregates the outcomes of one episode.
type SceneSummary struct {
	Scene string

	// AgentID is the lowest id among the controlled
	// agents.
	AgentID AgentID

	NumControlled int

	GoalAchieved int
	OffRoad      int
	Collisions   int

	// Enriched is set when the following fields were
	// filled in from SceneMetadata.
	Enriched          bool
	NumAgents         int
	IntersectingPaths int
}

// An Evaluator runs episodes in an Env and summarizes
// their outcomes.
type Evaluator struct {
	Env Env

	// Oracle provides expert actions.
	// It is required by ContinuousExpertMode and
	// DiscretizedExpertMode.
	Oracle ExpertOracle

	Mode Mode

	// Policy is required by PolicyMode.
	Policy Policy

	// Deterministic is passed to Policy.Predict.
	Deterministic bool

	// SceneMetadata, if non-nil, must contain every
	// evaluated scene.
	SceneMetadata map[string]SceneMetadata
}

// Evaluate runs maxIters episodes and returns one summary
// per episode.
//
// Scenes are chosen by the Env, so they may repeat.
//
// Configuration errors are returned before the Env is
// used.
func (e *Evaluator) Evaluate(maxIters int) ([]*SceneSummary, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	var summaries []*SceneSummary
	for iter := 0; iter < maxIters; iter++ {
		summary, err := e.runEpisode()
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (e *Evaluator) validate() error {
	if !e.Mode.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(e.Mode))
	}
	if e.Mode == PolicyMode && e.Policy == nil {
		return ErrMissingPolicy
	}
	if (e.Mode == ContinuousExpertMode || e.Mode == DiscretizedExpertMode) &&
		e.Oracle == nil {
		return ErrMissingOracle
	}
	return nil
}

func (e *Evaluator) runEpisode() (*SceneSummary, error) {
	obs, err := e.Env.Reset("")
	if err != nil {
		return nil, essentials.AddCtx("reset", err)
	}
	ep := newEpisodeFromObs(obs)
	allDone := false
	for t := 0; t < e.Env.EpisodeLength(); t++ {
		actions, err := e.chooseActions(ep, obs, t)
		if err != nil {
			return nil, err
		}
		res, err := e.Env.Step(actions)
		if err != nil {
			return nil, essentials.AddCtx("step "+e.Env.Scene(), err)
		}
		ep.Update(res)
		obs = res.Observations
		if res.AllDone {
			allDone = true
			if !ep.AllTerminated() {
				log.Printf("scene %s: all-done signal with agents still running",
					e.Env.Scene())
			}
			break
		}
	}
	if !allDone {
		log.Printf("scene %s: no all-done signal after %d steps",
			e.Env.Scene(), e.Env.EpisodeLength())
	}
	return e.summarize(ep)
}

func (e *Evaluator) chooseActions(ep *episode, obs map[AgentID]anyvec.Vector,
	timestep int) (map[AgentID]Action, error) {
	switch e.Mode {
	case PolicyMode:
		return policyActions(e.Policy, e.Deterministic, ep, obs)
	case ExpertReplayMode:
		expertReplay(e.Env, e.Oracle, timestep)
		return map[AgentID]Action{}, nil
	case ContinuousExpertMode:
		return continuousExpertActions(e.Env, e.Oracle, ep, timestep), nil
	case DiscretizedExpertMode:
		return discretizedExpertActions(e.Env, e.Oracle, ep, timestep), nil
	default:
		return nil, ErrUnknownMode
	}
}

func policyActions(p Policy, deterministic bool, ep *episode,
	obs map[AgentID]anyvec.Vector) (map[AgentID]Action, error) {
	actions := map[AgentID]Action{}
	for id, o := range obs {
		if !ep.Alive(id) {
			continue
		}
		act, err := p.Predict(o, deterministic)
		if err != nil {
			return nil, essentials.AddCtx("predict", err)
		}
		actions[id] = act
	}
	return actions, nil
}

func expertReplay(env Env, oracle ExpertOracle, timestep int) {
	for _, v := range env.ControlledVehicles() {
		v.SetExpertControl(true)
		if oracle != nil {
			oracle.ExpertAction(v, timestep)
		}
	}
}

func continuousExpertActions(env Env, oracle ExpertOracle, ep *episode,
	timestep int) map[AgentID]Action {
	actions := map[AgentID]Action{}
	for _, v := range env.ControlledVehicles() {
		v.SetExpertControl(false)
		if !ep.Alive(v.ID()) {
			continue
		}
		if act, ok := oracle.ExpertAction(v, timestep); ok {
			actions[v.ID()] = act
		}
	}
	return actions
}

// discretizedExpertActions queries the oracle with expert
// control enabled, then leaves expert control disabled so
// that the discretized actions drive the vehicles.
func discretizedExpertActions(env Env, oracle ExpertOracle, ep *episode,
	timestep int) map[AgentID]Action {
	grid := env.ActionGrid()
	vehicles := env.ControlledVehicles()
	actions := map[AgentID]Action{}
	for _, v := range vehicles {
		v.SetExpertControl(true)
		if !ep.Alive(v.ID()) {
			continue
		}
		act, ok := oracle.ExpertAction(v, timestep)
		if !ok {
			log.Printf("no expert action at step %d for vehicle %d in %s",
				timestep, v.ID(), env.Scene())
			continue
		}
		actions[v.ID()] = grid.Discretize(act)
	}
	for _, v := range vehicles {
		v.SetExpertControl(false)
	}
	return actions
}

func (e *Evaluator) summarize(ep *episode) (*SceneSummary, error) {
	totals := ep.Totals()
	summary := &SceneSummary{
		Scene:         e.Env.Scene(),
		NumControlled: len(ep.ids),
		GoalAchieved:  totals.GoalAchieved,
		OffRoad:       totals.OffRoad,
		Collisions:    totals.Collisions,
	}
	if len(ep.ids) > 0 {
		summary.AgentID = ep.ids[0]
	}
	if e.SceneMetadata != nil {
		meta, ok := e.SceneMetadata[summary.Scene]
		if !ok {
			return nil, &SceneNotFoundError{Scene: summary.Scene}
		}
		summary.Enriched = true
		summary.NumAgents = meta.NumAgents
		summary.IntersectingPaths = meta.IntersectingPaths
	}
	return summary, nil
}

// SummaryMeans holds per-scene averages over a table of
// SceneSummaries.
type SummaryMeans struct {
	GoalAchieved float64
	OffRoad      float64
	Collisions   float64
}

// Means averages the outcome columns of summaries.
func Means(summaries []*SceneSummary) SummaryMeans {
	if len(summaries) == 0 {
		return SummaryMeans{}
	}
	n := float64(len(summaries))
	return SummaryMeans{
		GoalAchieved: float64(lo.SumBy(summaries, func(s *SceneSummary) int {
			return s.GoalAchieved
		})) / n,
		OffRoad: float64(lo.SumBy(summaries, func(s *SceneSummary) int {
			return s.OffRoad
		})) / n,
		Collisions: float64(lo.SumBy(summaries, func(s *SceneSummary) int {
			return s.Collisions
		})) / n,
	}
}
