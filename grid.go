package nocturneagent

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// A Grid discretizes (acceleration, steering) pairs into
// a finite set of action indices.
//
// Action indices enumerate the Cartesian product of the
// two axes, with steering varying fastest.
type Grid struct {
	Accel    []float64
	Steering []float64

	actionToIdx map[ContinuousAction]DiscreteAction
}

// NewGrid creates a Grid from its two axes.
func NewGrid(accel, steering []float64) *Grid {
	g := &Grid{
		Accel:       append([]float64{}, accel...),
		Steering:    append([]float64{}, steering...),
		actionToIdx: map[ContinuousAction]DiscreteAction{},
	}
	for i, a := range g.Accel {
		for j, s := range g.Steering {
			point := ContinuousAction{Acceleration: a, Steering: s}
			if _, ok := g.actionToIdx[point]; !ok {
				g.actionToIdx[point] = DiscreteAction(i*len(g.Steering) + j)
			}
		}
	}
	return g
}

// SpanGrid creates a Grid with evenly spaced axes,
// including both bounds.
func SpanGrid(accelLow, accelHigh float64, numAccel int,
	steerLow, steerHigh float64, numSteer int) *Grid {
	return NewGrid(spanAxis(accelLow, accelHigh, numAccel),
		spanAxis(steerLow, steerHigh, numSteer))
}

func spanAxis(low, high float64, n int) []float64 {
	if n == 1 {
		return []float64{(low + high) / 2}
	}
	return floats.Span(make([]float64, n), low, high)
}

// NumActions returns the number of discrete actions.
func (g *Grid) NumActions() int {
	return len(g.Accel) * len(g.Steering)
}

// Action returns the grid point for an action index.
func (g *Grid) Action(idx DiscreteAction) ContinuousAction {
	n := len(g.Steering)
	return ContinuousAction{
		Acceleration: g.Accel[int(idx)/n],
		Steering:     g.Steering[int(idx)%n],
	}
}

// Nearest snaps a continuous action to the closest grid
// point, independently per axis.
// Ties go to the earliest value on an axis.
func (g *Grid) Nearest(a ContinuousAction) ContinuousAction {
	return ContinuousAction{
		Acceleration: g.Accel[nearestIndex(g.Accel, a.Acceleration)],
		Steering:     g.Steering[nearestIndex(g.Steering, a.Steering)],
	}
}

// Discretize maps a continuous action to the index of
// its Nearest grid point.
func (g *Grid) Discretize(a ContinuousAction) DiscreteAction {
	return g.actionToIdx[g.Nearest(a)]
}

func nearestIndex(axis []float64, x float64) int {
	diffs := make([]float64, len(axis))
	for i, v := range axis {
		diffs[i] = math.Abs(v - x)
	}
	return floats.MinIdx(diffs)
}
