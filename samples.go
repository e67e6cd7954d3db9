package nocturneagent

import (
	"errors"
	"log"
	"math/rand"

	"github.com/unixpickle/essentials"
)

// A Demonstration is an observation paired with the
// discretized expert action taken from it.
type Demonstration struct {
	Features []float64
	Action   DiscreteAction
}

// GatherDemonstrations replays each scene with discretized
// expert actions and records a Demonstration for every
// alive agent at every step.
//
// Scenes which cannot be initialized are skipped.
// If steps is 0, the environment's episode length is used.
func GatherDemonstrations(env Env, oracle ExpertOracle, scenes []string,
	steps int) (demos []Demonstration, err error) {
	defer essentials.AddCtxTo("gather demonstrations", &err)
	for _, scene := range scenes {
		obs, err := env.Reset(scene)
		if errors.Is(err, ErrInvalidScene) {
			log.Printf("skipping scene %s", scene)
			continue
		} else if err != nil {
			return nil, err
		}
		ep := newEpisodeFromObs(obs)
		numSteps := steps
		if numSteps == 0 {
			numSteps = env.EpisodeLength()
		}
		for t := 0; t < numSteps; t++ {
			actions := discretizedExpertActions(env, oracle, ep, t)
			for id, act := range actions {
				if o, ok := obs[id]; ok {
					demos = append(demos, Demonstration{
						Features: vecToFloats(o),
						Action:   act.(DiscreteAction),
					})
				}
			}
			res, err := env.Step(actions)
			if err != nil {
				return nil, err
			}
			ep.Update(res)
			obs = res.Observations
			if res.AllDone {
				break
			}
		}
	}
	return demos, nil
}

// SplitDemonstrations shuffles demos and splits them into
// a training and a validation set.
func SplitDemonstrations(gen *rand.Rand, demos []Demonstration,
	validationFrac float64) (train, validation []Demonstration) {
	shuffled := make([]Demonstration, len(demos))
	for i, j := range gen.Perm(len(demos)) {
		shuffled[i] = demos[j]
	}
	numValid := int(float64(len(demos)) * validationFrac)
	return shuffled[numValid:], shuffled[:numValid]
}
