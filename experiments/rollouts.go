package experiments

import (
	"log"

	"github.com/unixpickle/nocturneagent"
	"github.com/unixpickle/nocturneagent/replay"
)

// GatherDemonstrations collects discretized expert
// demonstrations from every scene of the environment.
func GatherDemonstrations(env *replay.Env) ([]nocturneagent.Demonstration, error) {
	scenes := env.Files()
	log.Printf("Gathering demonstrations from %d scenes...", len(scenes))
	demos, err := nocturneagent.GatherDemonstrations(env, env, scenes, 0)
	if err != nil {
		return nil, err
	}
	counts := make([]int, env.ActionGrid().NumActions())
	for _, d := range demos {
		counts[d.Action]++
	}
	log.Printf("demonstrations: count=%d actions=%v", len(demos), counts)
	return demos, nil
}

// ScenesOrAll returns scenes if it is non-empty, or else
// every scene of the environment.
func ScenesOrAll(env *replay.Env, scenes []string) []string {
	if len(scenes) > 0 {
		return scenes
	}
	return env.Files()
}
