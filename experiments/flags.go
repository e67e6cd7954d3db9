package experiments

import (
	"flag"
	"strings"

	"github.com/unixpickle/nocturneagent"
)

// ModeFlag is a flag.Value for an evaluation mode.
type ModeFlag struct {
	Mode nocturneagent.Mode
}

// String returns the name of the mode.
func (m *ModeFlag) String() string {
	return m.Mode.String()
}

// Set sets the mode from its name.
func (m *ModeFlag) Set(s string) error {
	mode, err := nocturneagent.ParseMode(s)
	if err != nil {
		return err
	}
	m.Mode = mode
	return nil
}

// AddFlag adds the flag to the flag package's global set
// of flags.
func (m *ModeFlag) AddFlag() {
	var names []string
	for _, mode := range nocturneagent.Modes {
		names = append(names, mode.String())
	}
	flag.Var(m, "mode", "evaluation mode ("+strings.Join(names, ", ")+")")
}

// EnvFlags holds parameters for creating replay
// environments.
type EnvFlags struct {
	// DataPath is the directory of scenario files.
	DataPath string

	NumScenes     int
	MaxControlled int
	EpisodeLength int
	NumPartners   int
}

// AddFlags adds the options to the flag package's global
// set of flags.
func (e *EnvFlags) AddFlags() {
	flag.StringVar(&e.DataPath, "data", "data/train", "scenario directory")
	flag.IntVar(&e.NumScenes, "scenes", 100, "number of scenes to use (0 for all)")
	flag.IntVar(&e.MaxControlled, "controlled", 1,
		"controlled vehicles per scene (0 for all)")
	flag.IntVar(&e.EpisodeLength, "length", 80, "episode length")
	flag.IntVar(&e.NumPartners, "partners", 5, "partner vehicles per observation")
}

// AnalysisFlags holds parameters for intersecting path
// analysis.
type AnalysisFlags struct {
	Steps      int
	TimeWindow int
	IndexFile  string
}

// AddFlags adds the options to the flag package's global
// set of flags.
func (a *AnalysisFlags) AddFlags() {
	flag.IntVar(&a.Steps, "steps", nocturneagent.DefaultRecordSteps,
		"steps to record per scene")
	flag.IntVar(&a.TimeWindow, "window", nocturneagent.DefaultTimeWindow,
		"allowed time window for intersecting paths")
	flag.StringVar(&a.IndexFile, "index", "intersecting_paths.msgpack",
		"scene index file")
}
