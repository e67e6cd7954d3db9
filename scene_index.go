package nocturneagent

import (
	"log"
	"os"

	"github.com/samber/lo"
	"github.com/unixpickle/essentials"
	"github.com/vmihailenco/msgpack/v5"
)

// SceneStats summarizes the path interactions among the
// agents of one scene.
//
// The slices are parallel to AgentIDs.
type SceneStats struct {
	AgentIDs          []AgentID `msgpack:"veh_id"`
	IntersectingPaths []int     `msgpack:"intersecting_paths"`

	// MinStepDiff holds nil for agents without any
	// crossing.
	MinStepDiff []*int `msgpack:"min_step_diff"`

	TotalIntersectingPaths int `msgpack:"total_intersecting_paths"`
}

// MinOffsets returns MinStepDiff as Offsets.
func (s *SceneStats) MinOffsets() []Offset {
	return lo.Map(s.MinStepDiff, func(x *int, _ int) Offset {
		if x == nil {
			return Offset{}
		}
		return Offset{Steps: *x, OK: true}
	})
}

// A SceneIndex maps scene names to SceneStats.
type SceneIndex map[string]*SceneStats

// LoadSceneIndex reads an index written by Save.
func LoadSceneIndex(path string) (index SceneIndex, err error) {
	defer essentials.AddCtxTo("load scene index", &err)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := msgpack.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	return index, nil
}

// Save writes the index to a file.
func (s SceneIndex) Save(path string) (err error) {
	defer essentials.AddCtxTo("save scene index", &err)
	data, err := msgpack.Marshal(map[string]*SceneStats(s))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Metadata converts the index into the form used by an
// Evaluator.
func (s SceneIndex) Metadata() map[string]SceneMetadata {
	return lo.MapValues(s, func(stats *SceneStats, _ string) SceneMetadata {
		return SceneMetadata{
			NumAgents:         len(stats.AgentIDs),
			IntersectingPaths: stats.TotalIntersectingPaths,
		}
	})
}

// An Analyzer computes SceneStats by replaying scenes
// under expert control.
type Analyzer struct {
	Env Env

	// Steps is the number of steps to record per scene.
	Steps int

	// TimeWindow is the allowed temporal offset for
	// crossing paths.
	// Crossings count when their offset is below it, so a
	// window of 0 counts nothing.
	TimeWindow int
}

// NewAnalyzer creates an Analyzer with DefaultRecordSteps
// and DefaultTimeWindow.
func NewAnalyzer(env Env) *Analyzer {
	return &Analyzer{
		Env:        env,
		Steps:      DefaultRecordSteps,
		TimeWindow: DefaultTimeWindow,
	}
}

// SceneStats records a scene and computes its stats.
//
// It returns nil if the scene could not be initialized or
// has no agents.
func (a *Analyzer) SceneStats(scene string) (*SceneStats, error) {
	traj, err := RecordScene(a.Env, scene, a.Steps)
	if err != nil {
		return nil, err
	}
	if traj == nil || len(traj.IDs) == 0 {
		return nil, nil
	}
	counts, offsets := PairwiseIntersections(traj, a.TimeWindow)
	return &SceneStats{
		AgentIDs:          traj.IDs,
		IntersectingPaths: counts,
		MinStepDiff: lo.Map(offsets, func(o Offset, _ int) *int {
			if !o.OK {
				return nil
			}
			return lo.ToPtr(o.Steps)
		}),
		TotalIntersectingPaths: lo.Sum(counts),
	}, nil
}

// BuildIndex computes stats for every scene, skipping the
// scenes that cannot be initialized or have no agents.
//
// If savePath is non-empty, the index is saved there.
func (a *Analyzer) BuildIndex(scenes []string, savePath string) (SceneIndex, error) {
	index := SceneIndex{}
	for i, scene := range scenes {
		stats, err := a.SceneStats(scene)
		if err != nil {
			return nil, err
		}
		if stats == nil {
			log.Printf("skipping scene %s", scene)
			continue
		}
		index[scene] = stats
		log.Printf("scene %d/%d: %s agents=%d intersecting_paths=%d",
			i+1, len(scenes), scene, len(stats.AgentIDs),
			stats.TotalIntersectingPaths)
	}
	if savePath != "" {
		if err := index.Save(savePath); err != nil {
			return nil, err
		}
	}
	return index, nil
}
