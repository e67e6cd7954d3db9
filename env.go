package nocturneagent

import (
	"errors"
	"io"

	"github.com/unixpickle/anyvec"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrInvalidScene is returned by Env.Reset when a scene
// cannot be initialized (e.g. a malformed scene file).
//
// Callers which iterate over many scenes may skip the
// scene and continue.
var ErrInvalidScene = errors.New("invalid scene")

// An AgentID identifies a vehicle within a scene.
type AgentID int64

// A Vehicle is a handle to a controlled vehicle in an
// Env.
type Vehicle interface {
	ID() AgentID
	Position() r2.Vec
	Speed() float64

	// ExpertControl reports whether the environment's
	// internal expert drives the vehicle, ignoring any
	// actions passed to Step.
	ExpertControl() bool
	SetExpertControl(expert bool)
}

// TerminalInfo is the per-agent information reported by
// an Env when an agent finishes.
type TerminalInfo struct {
	GoalAchieved bool
	OffRoad      bool
	Collided     bool
}

// StepResult is the outcome of a single Env step.
//
// Maps are keyed by the agents which were alive before
// the step.
type StepResult struct {
	Observations map[AgentID]anyvec.Vector
	Rewards      map[AgentID]float64
	Done         map[AgentID]bool
	Info         map[AgentID]TerminalInfo

	// AllDone is set when the episode is over.
	AllDone bool
}

// An Env is a multi-agent driving environment.
type Env interface {
	io.Closer

	// Reset starts an episode.
	// If scene is "", the environment chooses the next
	// scene itself.
	Reset(scene string) (map[AgentID]anyvec.Vector, error)

	// Step applies actions and advances time.
	// Agents absent from the map receive the
	// environment's default behavior.
	Step(actions map[AgentID]Action) (*StepResult, error)

	// ControlledVehicles returns the vehicles which are
	// still being simulated in the current episode.
	ControlledVehicles() []Vehicle

	// Scene returns the name of the current scene.
	Scene() string

	// EpisodeLength is the maximum number of steps in an
	// episode.
	EpisodeLength() int

	// ActionGrid returns the discretization used for
	// DiscreteActions.
	ActionGrid() *Grid
}

// An ExpertOracle produces the recorded (ground-truth)
// action of a vehicle at a timestep.
type ExpertOracle interface {
	// ExpertAction returns false if there is no expert
	// action for the vehicle at the timestep.
	ExpertAction(v Vehicle, timestep int) (ContinuousAction, bool)
}

// A Policy chooses discrete actions from observations.
type Policy interface {
	Predict(obs anyvec.Vector, deterministic bool) (DiscreteAction, error)
}
