package experiments

import (
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/nocturneagent/replay"
)

// MakeEnv creates a replay environment from the flags.
func MakeEnv(e *EnvFlags) (env *replay.Env, err error) {
	defer essentials.AddCtxTo("make env ("+e.DataPath+")", &err)
	config := replay.DefaultConfig(e.DataPath)
	config.NumScenes = e.NumScenes
	config.MaxControlled = e.MaxControlled
	if e.EpisodeLength > 0 {
		config.EpisodeLength = e.EpisodeLength
	}
	config.NumPartners = e.NumPartners
	return replay.NewEnv(config)
}

// MakeAnalysisEnv creates an environment in which every
// vehicle of every scene is controlled, which is what
// intersecting path analysis needs.
func MakeAnalysisEnv(e *EnvFlags) (*replay.Env, error) {
	f := *e
	f.MaxControlled = 0
	return MakeEnv(&f)
}
