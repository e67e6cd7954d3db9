package nocturneagent

import (
	"errors"
	"fmt"
)

// An Action is passed to Env.Step for a single agent.
//
// It is either a DiscreteAction or a ContinuousAction.
type Action interface {
	isAction()
}

// A DiscreteAction is an index into an action Grid.
type DiscreteAction int

func (DiscreteAction) isAction() {}

// A ContinuousAction is a raw acceleration and steering
// command.
type ContinuousAction struct {
	Acceleration float64
	Steering     float64
}

func (ContinuousAction) isAction() {}

func (c ContinuousAction) String() string {
	return fmt.Sprintf("(accel=%.4f, steer=%.4f)", c.Acceleration, c.Steering)
}

// ErrUnknownMode is returned for an invalid Mode.
var ErrUnknownMode = errors.New("unknown evaluation mode")

// A Mode determines how an Evaluator chooses actions.
type Mode int

const (
	// PolicyMode runs a learned Policy on every agent.
	PolicyMode Mode = iota

	// ExpertReplayMode lets the environment's expert
	// drive every vehicle.
	ExpertReplayMode

	// ContinuousExpertMode passes the oracle's continuous
	// actions through unmodified.
	ContinuousExpertMode

	// DiscretizedExpertMode snaps the oracle's actions to
	// the nearest point on the action Grid.
	DiscretizedExpertMode
)

// Modes contains all supported Modes.
var Modes = []Mode{
	PolicyMode,
	ExpertReplayMode,
	ContinuousExpertMode,
	DiscretizedExpertMode,
}

// String returns the canonical name of the mode, like
// "policy" or "expert_replay".
func (m Mode) String() string {
	switch m {
	case PolicyMode:
		return "policy"
	case ExpertReplayMode:
		return "expert_replay"
	case ContinuousExpertMode:
		return "continuous_expert_replay"
	case DiscretizedExpertMode:
		return "discretized_expert_replay"
	default:
		return ""
	}
}

// Valid reports whether m is one of Modes.
func (m Mode) Valid() bool {
	return m.String() != ""
}

// ParseMode parses a mode name.
//
// Besides the names produced by Mode.String, the older
// "cont_expert_act_replay" and "disc_expert_act_replay"
// spellings are accepted.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "policy":
		return PolicyMode, nil
	case "expert_replay", "expert":
		return ExpertReplayMode, nil
	case "continuous_expert_replay", "cont_expert_act_replay":
		return ContinuousExpertMode, nil
	case "discretized_expert_replay", "disc_expert_act_replay", "disc_expert_replay":
		return DiscretizedExpertMode, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}
